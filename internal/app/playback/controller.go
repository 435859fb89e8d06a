// Package playback attaches a playlist to a media player: it loads items
// into the player, advances automatically and follows external source
// changes.
package playback

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbox/internal/app/autoadvance"
	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/app/playlist"
	"github.com/osa030/playlistbox/internal/domain/item"
	"github.com/osa030/playlistbox/internal/domain/source"
)

// Errors
var (
	ErrNilPlayer       = errors.New("player is required")
	ErrNoPlaylist      = errors.New("no playlist loaded")
	ErrNilPlaylist     = errors.New("playlist is required")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoItem          = errors.New("no item to load")
	ErrDisposed        = errors.New("controller disposed")
)

// forwarded lists the playlist events re-emitted on the player.
var forwarded = []event.Type{
	playlist.EventChange,
	playlist.EventAdd,
	playlist.EventRemove,
	playlist.EventSorted,
}

// Observer receives controller statistics.
type Observer interface {
	ItemLoaded()
	AutoAdvanced()
	SourceDetached()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithPosterMode keeps posters when auto-advancing, for audio-only players
// where the poster is the only visual.
func WithPosterMode(enabled bool) Option {
	return func(c *Controller) { c.posterMode = enabled }
}

// WithObserver sets the statistics observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// LoadOption configures a single item load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	poster bool
}

// WithoutPoster clears the poster instead of showing the item's poster,
// avoiding a flash when playback starts right away.
func WithoutPoster() LoadOption {
	return func(o *loadOptions) { o.poster = false }
}

// Controller manages one playlist on one player.
//
// A Controller is not safe for concurrent use. All calls, including the
// player's event and timer callbacks, must come from the player's event loop.
type Controller struct {
	player      Player
	playlist    *playlist.Playlist
	autoAdvance *autoadvance.AutoAdvance

	forwardIDs  map[event.Type]event.ListenerID
	loadStartID event.ListenerID
	disposeID   event.ListenerID

	// loadGen invalidates "ready" continuations of superseded loads
	loadGen uint64

	posterMode bool
	disposed   bool

	observer Observer
	log      zerolog.Logger
}

// NewController attaches a controller to p.
func NewController(p Player, opts ...Option) (*Controller, error) {
	if p == nil {
		return nil, ErrNilPlayer
	}

	c := &Controller{
		player:     p,
		forwardIDs: make(map[event.Type]event.ListenerID),
		log:        zlog.Logger.With().Str("component", "playback").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.autoAdvance = autoadvance.New(p, c.playNext,
		autoadvance.WithLogger(c.log.With().Str("component", "autoadvance").Logger()))
	c.disposeID = p.On(EventDispose, func(event.Event) { c.Dispose() })

	return c, nil
}

// Playlist returns the loaded playlist, or nil.
func (c *Controller) Playlist() *playlist.Playlist {
	return c.playlist
}

// LoadPlaylist replaces the loaded playlist with pl. Playlist events are
// re-emitted on the player until the playlist is unloaded.
func (c *Controller) LoadPlaylist(pl *playlist.Playlist) error {
	if c.disposed {
		return ErrDisposed
	}
	if pl == nil {
		c.log.Error().Msgf("playback: cannot load playlist: %v", ErrNilPlaylist)
		return ErrNilPlaylist
	}

	c.UnloadPlaylist()
	c.playlist = pl

	for _, t := range forwarded {
		c.forwardIDs[t] = pl.Events().On(t, func(e event.Event) {
			c.player.Trigger(e.Type, e.Payload)
		})
	}
	c.loadStartID = c.player.On(EventLoadStart, func(event.Event) {
		c.handleSourceChange()
	})

	c.log.Debug().Msgf("playback: playlist loaded: items=%d", pl.Len())
	return nil
}

// UnloadPlaylist resets and detaches the loaded playlist and disables
// auto-advance. Pending "ready" continuations are dropped.
func (c *Controller) UnloadPlaylist() {
	c.autoAdvance.Reset()
	c.loadGen++

	if c.playlist == nil {
		return
	}

	c.playlist.Reset()
	for t, id := range c.forwardIDs {
		c.playlist.Events().Off(t, id)
		delete(c.forwardIDs, t)
	}
	if c.loadStartID != "" {
		c.player.Off(EventLoadStart, c.loadStartID)
		c.loadStartID = ""
	}
	c.playlist = nil

	c.log.Debug().Msg("playback: playlist unloaded")
}

// AutoAdvance sets the delay in seconds between the end of an item and
// loading the next one. An invalid delay (negative, NaN or infinite)
// disables auto-advance.
func (c *Controller) AutoAdvance(seconds float64) {
	if c.disposed {
		c.log.Error().Msgf("playback: cannot set auto-advance: %v", ErrDisposed)
		return
	}
	c.autoAdvance.SetDelay(seconds)
}

// AutoAdvanceDelay returns the auto-advance delay in seconds.
func (c *Controller) AutoAdvanceDelay() (float64, bool) {
	return c.autoAdvance.Delay()
}

// AutoAdvanceState returns the auto-advance state.
func (c *Controller) AutoAdvanceState() autoadvance.State {
	return c.autoAdvance.State()
}

// SetPosterMode toggles poster mode.
func (c *Controller) SetPosterMode(enabled bool) {
	c.posterMode = enabled
}

// LoadItemAt loads the item at index into the player and makes it current.
func (c *Controller) LoadItemAt(index int, opts ...LoadOption) error {
	if c.disposed {
		c.log.Error().Msgf("playback: cannot load item: %v", ErrDisposed)
		return ErrDisposed
	}
	if c.playlist == nil {
		c.log.Error().Msgf("playback: cannot load item: %v", ErrNoPlaylist)
		return ErrNoPlaylist
	}

	it, ok := c.playlist.ItemAt(index)
	if !ok {
		c.log.Error().Msgf("playback: cannot load item: %v: index=%d len=%d", ErrIndexOutOfRange, index, c.playlist.Len())
		return errors.Wrapf(ErrIndexOutOfRange, "index %d", index)
	}

	o := loadOptions{poster: true}
	for _, opt := range opts {
		opt(&o)
	}

	c.loadItem(index, it, o)
	return nil
}

// LoadFirst loads the first item.
func (c *Controller) LoadFirst(opts ...LoadOption) error {
	return c.LoadItemAt(0, opts...)
}

// LoadLast loads the last item.
func (c *Controller) LoadLast(opts ...LoadOption) error {
	if c.playlist == nil {
		return ErrNoPlaylist
	}
	return c.loadComputed(c.playlist.LastIndex(), opts)
}

// LoadNext loads the item after the current one.
func (c *Controller) LoadNext(opts ...LoadOption) error {
	if c.playlist == nil {
		return ErrNoPlaylist
	}
	next := c.playlist.NextIndex()
	if next == playlist.NoIndex && c.atLastItem() {
		c.player.Trigger(EventPlaylistEnded, nil)
	}
	return c.loadComputed(next, opts)
}

// LoadPrevious loads the item before the current one.
func (c *Controller) LoadPrevious(opts ...LoadOption) error {
	if c.playlist == nil {
		return ErrNoPlaylist
	}
	return c.loadComputed(c.playlist.PreviousIndex(), opts)
}

func (c *Controller) loadComputed(index int, opts []LoadOption) error {
	if index == playlist.NoIndex {
		return ErrNoItem
	}
	return c.LoadItemAt(index, opts...)
}

func (c *Controller) atLastItem() bool {
	cur := c.playlist.CurrentIndex()
	return cur != playlist.NoIndex && cur == c.playlist.LastIndex()
}

// loadItem performs the player side effects of loading it.
func (c *Controller) loadItem(index int, it item.Item, o loadOptions) {
	c.player.Trigger(EventBeforeItem, it)

	c.clearTextTracks()
	if o.poster {
		c.player.SetPoster(it.Poster)
	} else {
		c.player.SetPoster("")
	}
	c.player.SetSrc(it.Sources)

	// A loadstart handler may have run; the current index follows the load
	// either way.
	if err := c.playlist.SetCurrentIndex(index); err != nil {
		return
	}
	if c.observer != nil {
		c.observer.ItemLoaded()
	}

	if d, ok := c.autoAdvance.Delay(); ok {
		c.autoAdvance.SetDelay(d)
	}

	c.loadGen++
	gen := c.loadGen
	c.player.Ready(func() {
		if gen != c.loadGen {
			c.log.Debug().Msgf("playback: dropping stale ready callback: item=%q", it.Title())
			return
		}
		for _, tt := range it.TextTracks {
			c.player.AddRemoteTextTrack(tt)
		}
		c.player.Trigger(EventItem, it)
	})

	c.log.Debug().Msgf("playback: item loaded: index=%d item=%q", index, it.Title())
}

// clearTextTracks removes every remote text track, back to front.
func (c *Controller) clearTextTracks() {
	tracks := c.player.RemoteTextTracks()
	for i := tracks.Len() - 1; i >= 0; i-- {
		c.player.RemoveRemoteTextTrack(tracks.At(i))
	}
}

// playNext is called by auto-advance when a countdown ends.
func (c *Controller) playNext() {
	if c.playlist == nil {
		return
	}

	var opts []LoadOption
	if !c.posterMode {
		opts = append(opts, WithoutPoster())
	}
	if err := c.LoadNext(opts...); err != nil {
		c.log.Debug().Msgf("playback: auto-advance stopped: %v", err)
		return
	}
	if c.observer != nil {
		c.observer.AutoAdvanced()
	}
	c.player.Play()
}

// handleSourceChange detaches from the playlist when the player loads a
// source that is not part of it.
func (c *Controller) handleSourceChange() {
	if c.playlist == nil {
		return
	}

	src := c.player.CurrentSrc()
	if c.playlist.Contains(source.ByLocator(src)) {
		return
	}

	c.log.Debug().Msgf("playback: source outside the playlist: src=%q", src)
	c.autoAdvance.Reset()
	c.playlist.ResetCurrentIndex()
	if c.observer != nil {
		c.observer.SourceDetached()
	}
}

// Dispose unloads the playlist and detaches from the player.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.UnloadPlaylist()
	c.player.Off(EventDispose, c.disposeID)
	c.disposed = true

	c.log.Debug().Msg("playback: disposed")
}
