// Package playlist provides the ordered Playlist with current-item tracking.
package playlist

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/domain/item"
	"github.com/osa030/playlistbox/internal/domain/source"
)

// Errors
var (
	ErrNotAList        = errors.New("playlist must be a list of items")
	ErrNoValidItems    = errors.New("none of the provided items were valid")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidCount    = errors.New("count must be zero or greater")
)

// NoIndex is returned by index queries when there is no such item.
const NoIndex = -1

// Observer receives playlist statistics.
type Observer interface {
	ItemsRejected(n int)
}

// Option configures a Playlist.
type Option func(*Playlist)

// WithLogger sets the logger used for validation messages.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Playlist) { p.log = l }
}

// WithRand sets the random source used by Shuffle.
func WithRand(r *rand.Rand) Option {
	return func(p *Playlist) { p.rand = r }
}

// WithObserver sets the statistics observer.
func WithObserver(o Observer) Option {
	return func(p *Playlist) { p.observer = o }
}

// Playlist is an ordered list of items with an optional current item.
// Events are delivered after the playlist lock is released, so handlers
// may call back into the playlist.
type Playlist struct {
	mu sync.RWMutex

	items   []*item.Item
	current int // NoIndex when no item is current
	repeat  bool

	events   *event.Emitter
	log      zerolog.Logger
	rand     *rand.Rand
	observer Observer
}

// New creates an empty playlist.
func New(opts ...Option) *Playlist {
	p := &Playlist{
		items:   make([]*item.Item, 0),
		current: NoIndex,
		events:  event.NewEmitter(),
		log:     zlog.Logger.With().Str("component", "playlist").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events returns the emitter carrying playlist notifications.
func (p *Playlist) Events() *event.Emitter {
	return p.events
}

// Set replaces the items with the valid entries of raw and clears the
// current index. A nil raw is not a list; it is logged and the current
// items are returned unchanged. If raw has entries but none are valid,
// nothing changes.
func (p *Playlist) Set(raw []item.Raw) ([]item.Item, error) {
	if raw == nil {
		p.log.Error().Msgf("playlist: %v", ErrNotAList)
		return p.Items(), ErrNotAList
	}

	valid := p.validateAll(raw)
	if len(valid) == 0 && len(raw) > 0 {
		p.log.Error().Msgf("playlist: %v", ErrNoValidItems)
		return p.Items(), ErrNoValidItems
	}

	p.mu.Lock()
	p.items = valid
	p.current = NoIndex
	out := cloneAll(p.items)
	p.mu.Unlock()

	p.events.Trigger(EventChange, nil)
	return out, nil
}

// Items returns a copy of the items.
func (p *Playlist) Items() []item.Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneAll(p.items)
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// ItemAt returns a copy of the item at index.
func (p *Playlist) ItemAt(index int) (item.Item, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index < 0 || index >= len(p.items) {
		return item.Item{}, false
	}
	return p.items[index].Clone(), true
}

// Add appends the valid entries of raw and returns them.
func (p *Playlist) Add(raw ...item.Raw) ([]item.Item, error) {
	return p.Insert(NoIndex, raw...)
}

// Insert inserts the valid entries of raw at index and returns them.
// An index outside [0, Len()] inserts at the end. If the insertion point is
// at or before the current item, the current index moves with its item.
func (p *Playlist) Insert(index int, raw ...item.Raw) ([]item.Item, error) {
	valid := p.validateAll(raw)
	if len(valid) == 0 {
		p.log.Error().Msgf("playlist: cannot add items: %v", ErrNoValidItems)
		return []item.Item{}, ErrNoValidItems
	}

	p.mu.Lock()
	if index < 0 || index > len(p.items) {
		index = len(p.items)
	}
	p.items = slices.Insert(p.items, index, valid...)
	if p.current != NoIndex && index <= p.current {
		p.current += len(valid)
	}
	out := cloneAll(valid)
	p.mu.Unlock()

	p.events.Trigger(EventAdd, AddEvent{Count: len(out), Index: index})
	return out, nil
}

// Remove removes up to count items starting at index and returns them.
// If the current item is removed the current index becomes NoIndex.
func (p *Playlist) Remove(index, count int) ([]item.Item, error) {
	p.mu.Lock()
	if index < 0 || index >= len(p.items) {
		n := len(p.items)
		p.mu.Unlock()
		p.log.Error().Msgf("playlist: cannot remove: %v: index=%d len=%d", ErrIndexOutOfRange, index, n)
		return []item.Item{}, errors.Wrapf(ErrIndexOutOfRange, "index %d", index)
	}
	if count < 0 {
		p.mu.Unlock()
		p.log.Error().Msgf("playlist: cannot remove: %v: count=%d", ErrInvalidCount, count)
		return []item.Item{}, errors.Wrapf(ErrInvalidCount, "count %d", count)
	}

	count = min(count, len(p.items)-index)
	end := index + count
	out := cloneAll(p.items[index:end])
	p.items = slices.Delete(p.items, index, end)

	switch {
	case p.current == NoIndex, p.current < index:
	case p.current >= end:
		p.current -= count
	default:
		p.current = NoIndex
	}
	p.mu.Unlock()

	p.events.Trigger(EventRemove, RemoveEvent{Count: count, Index: index})
	return out, nil
}

// Sort orders the items with cmp, keeping equal items in their original
// order. The current item keeps being current. cmp must not call back into
// the playlist.
func (p *Playlist) Sort(cmp func(a, b item.Item) int) {
	if cmp == nil {
		return
	}

	p.mu.Lock()
	if len(p.items) == 0 {
		p.mu.Unlock()
		return
	}
	type entry struct {
		it   *item.Item
		view item.Item
	}
	entries := make([]entry, len(p.items))
	for i, it := range p.items {
		entries[i] = entry{it: it, view: it.Clone()}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp(a.view, b.view)
	})

	cur := p.currentLocked()
	for i, e := range entries {
		p.items[i] = e.it
	}
	p.relocateLocked(cur)
	p.mu.Unlock()

	p.events.Trigger(EventSorted, nil)
}

// Reverse reverses the order of the items.
func (p *Playlist) Reverse() {
	p.mu.Lock()
	if len(p.items) == 0 {
		p.mu.Unlock()
		return
	}
	slices.Reverse(p.items)
	if p.current != NoIndex {
		p.current = len(p.items) - 1 - p.current
	}
	p.mu.Unlock()

	p.events.Trigger(EventSorted, nil)
}

// ShuffleOptions controls Shuffle.
type ShuffleOptions struct {
	// All shuffles the whole list. Otherwise only items after the current
	// one are shuffled (the whole list if there is no current item).
	All bool
}

// Shuffle randomizes the order of the items with an unbiased Fisher-Yates
// shuffle. The current item keeps being current.
func (p *Playlist) Shuffle(opts ShuffleOptions) {
	p.mu.Lock()
	start := 0
	if !opts.All && p.current != NoIndex {
		start = p.current + 1
	}
	if len(p.items)-start < 2 {
		p.mu.Unlock()
		return
	}

	cur := p.currentLocked()
	rest := p.items[start:]
	for i := len(rest) - 1; i > 0; i-- {
		j := p.intN(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
	p.relocateLocked(cur)
	p.mu.Unlock()

	p.events.Trigger(EventSorted, nil)
}

func (p *Playlist) intN(n int) int {
	if p.rand != nil {
		return p.rand.IntN(n)
	}
	return rand.IntN(n)
}

// SetCurrentIndex makes the item at index current.
func (p *Playlist) SetCurrentIndex(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.items) {
		p.log.Error().Msgf("playlist: cannot set current index: %v: index=%d len=%d", ErrIndexOutOfRange, index, len(p.items))
		return errors.Wrapf(ErrIndexOutOfRange, "index %d", index)
	}
	p.current = index
	return nil
}

// ResetCurrentIndex clears the current item.
func (p *Playlist) ResetCurrentIndex() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = NoIndex
}

// CurrentIndex returns the index of the current item, or NoIndex.
func (p *Playlist) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// CurrentItem returns a copy of the current item.
func (p *Playlist) CurrentItem() (item.Item, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == NoIndex {
		return item.Item{}, false
	}
	return p.items[p.current].Clone(), true
}

// LastIndex returns the index of the last item, or NoIndex if empty.
func (p *Playlist) LastIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items) - 1
}

// NextIndex returns the index after the current one. Past the last item it
// wraps to 0 when repeat is enabled and returns NoIndex otherwise.
func (p *Playlist) NextIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == NoIndex {
		return NoIndex
	}
	if !p.repeat && p.current == len(p.items)-1 {
		return NoIndex
	}
	return (p.current + 1) % len(p.items)
}

// PreviousIndex returns the index before the current one. Before the first
// item it wraps to the last when repeat is enabled and returns NoIndex
// otherwise.
func (p *Playlist) PreviousIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == NoIndex {
		return NoIndex
	}
	if !p.repeat && p.current == 0 {
		return NoIndex
	}
	return (p.current - 1 + len(p.items)) % len(p.items)
}

// SetRepeat enables or disables wraparound navigation.
func (p *Playlist) SetRepeat(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = enabled
}

// Repeat reports whether wraparound navigation is enabled.
func (p *Playlist) Repeat() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.repeat
}

// IndexOf returns the index of the first item matching q, or NoIndex.
func (p *Playlist) IndexOf(q source.Query) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return source.IndexOfItem(p.items, q)
}

// Contains reports whether any item matches q.
func (p *Playlist) Contains(q source.Query) bool {
	return p.IndexOf(q) != NoIndex
}

// Reset empties the playlist, clears the current item and disables repeat.
// No event is emitted.
func (p *Playlist) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = make([]*item.Item, 0)
	p.current = NoIndex
	p.repeat = false
}

// validateAll validates raw entries, dropping rejected ones.
func (p *Playlist) validateAll(raw []item.Raw) []*item.Item {
	valid := make([]*item.Item, 0, len(raw))
	for _, r := range raw {
		it, err := item.Validate(r, p.log)
		if err != nil {
			continue
		}
		valid = append(valid, it)
	}
	if rejected := len(raw) - len(valid); rejected > 0 && p.observer != nil {
		p.observer.ItemsRejected(rejected)
	}
	return valid
}

func (p *Playlist) currentLocked() *item.Item {
	if p.current == NoIndex {
		return nil
	}
	return p.items[p.current]
}

// relocateLocked points the current index at cur's new position.
func (p *Playlist) relocateLocked(cur *item.Item) {
	if cur == nil {
		p.current = NoIndex
		return
	}
	p.current = slices.Index(p.items, cur)
}

func cloneAll(items []*item.Item) []item.Item {
	out := make([]item.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
