// Package memplayer provides an in-memory media player for the dev CLI and
// tests. Playback is simulated with a clock: an item "plays" for its
// duration and then reports that it ended.
package memplayer

import (
	"slices"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbox/internal/app/autoadvance"
	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/app/playback"
	"github.com/osa030/playlistbox/internal/domain/item"
	"github.com/osa030/playlistbox/internal/domain/source"
	"github.com/osa030/playlistbox/internal/infra/clock"
)

// Events emitted by the player besides those shared with the controller.
const (
	EventPause event.Type = "pause"
)

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// WithManualReady makes the player wait for MarkReady after every source
// change before running Ready callbacks.
func WithManualReady() Option {
	return func(p *Player) { p.manualReady = true }
}

// Player is an in-memory playback.Player.
type Player struct {
	*event.Emitter

	clock clock.Clock

	sources []source.Source
	poster  string
	tracks  *TrackList

	paused   bool
	ended    bool
	duration time.Duration
	endTimer clock.Timer

	manualReady bool
	ready       bool
	readyQueue  []func()

	log zerolog.Logger
}

var _ playback.Player = (*Player)(nil)

// New creates a paused player with no source.
func New(c clock.Clock, opts ...Option) *Player {
	p := &Player{
		Emitter: event.NewEmitter(),
		clock:   c,
		tracks:  &TrackList{},
		paused:  true,
		ready:   true,
		log:     zlog.Logger.With().Str("component", "memplayer").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AfterFunc implements clock.Clock.
func (p *Player) AfterFunc(d time.Duration, f func()) clock.Timer {
	return p.clock.AfterFunc(d, f)
}

// SetSrc loads sources, pausing playback and emitting "loadstart".
func (p *Player) SetSrc(sources []source.Source) {
	p.stopEndTimer()
	p.sources = slices.Clone(sources)
	p.paused = true
	p.ended = false
	p.duration = 0
	if p.manualReady {
		p.ready = false
	}

	p.log.Debug().Msgf("memplayer: source set: src=%q", p.CurrentSrc())
	p.Trigger(playback.EventLoadStart, nil)
}

// Sources returns the loaded sources.
func (p *Player) Sources() []source.Source {
	return slices.Clone(p.sources)
}

// CurrentSrc returns the locator of the first loaded source.
func (p *Player) CurrentSrc() string {
	if len(p.sources) == 0 {
		return ""
	}
	return p.sources[0].Src
}

// Poster returns the poster URL.
func (p *Player) Poster() string {
	return p.poster
}

// SetPoster sets the poster URL.
func (p *Player) SetPoster(url string) {
	p.poster = url
}

// SetDuration sets how long the loaded source plays before it ends.
// Zero means it plays until End is called.
func (p *Player) SetDuration(d time.Duration) {
	p.duration = d
}

// RemoteTextTracks returns the live text track list.
func (p *Player) RemoteTextTracks() playback.TextTrackList {
	return p.tracks
}

// AddRemoteTextTrack attaches a text track.
func (p *Player) AddRemoteTextTrack(t item.TextTrack) playback.RemoteTextTrack {
	rt := &remoteTrack{desc: t}
	p.tracks.tracks = append(p.tracks.tracks, rt)
	return rt
}

// RemoveRemoteTextTrack detaches a text track.
func (p *Player) RemoveRemoteTextTrack(t playback.RemoteTextTrack) {
	p.tracks.remove(t)
}

// Play starts or resumes playback, emitting "play".
func (p *Player) Play() {
	if len(p.sources) == 0 {
		return
	}
	p.paused = false
	p.ended = false
	p.Trigger(autoadvance.EventPlay, nil)

	if p.duration > 0 && p.endTimer == nil {
		p.endTimer = p.clock.AfterFunc(p.duration, func() {
			p.endTimer = nil
			p.End()
		})
	}
}

// Pause pauses playback, emitting "pause".
func (p *Player) Pause() {
	if p.paused {
		return
	}
	p.stopEndTimer()
	p.paused = true
	p.Trigger(EventPause, nil)
}

// End finishes playback of the current source, emitting "ended".
func (p *Player) End() {
	p.stopEndTimer()
	p.paused = true
	p.ended = true
	p.log.Debug().Msgf("memplayer: ended: src=%q", p.CurrentSrc())
	p.Trigger(autoadvance.EventEnded, nil)
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	return p.paused
}

// Ended reports whether playback of the current source ended.
func (p *Player) Ended() bool {
	return p.ended
}

// Ready runs fn now if the player is ready, or after MarkReady otherwise.
func (p *Player) Ready(fn func()) {
	if p.ready {
		fn()
		return
	}
	p.readyQueue = append(p.readyQueue, fn)
}

// MarkReady marks the current source as negotiated and runs queued Ready
// callbacks in order.
func (p *Player) MarkReady() {
	p.ready = true
	queue := p.readyQueue
	p.readyQueue = nil
	for _, fn := range queue {
		fn()
	}
}

// PendingReady returns the number of queued Ready callbacks.
func (p *Player) PendingReady() int {
	return len(p.readyQueue)
}

// Dispose stops playback, emits "dispose" and drops every listener.
func (p *Player) Dispose() {
	p.stopEndTimer()
	p.Trigger(playback.EventDispose, nil)
	p.Clear()
}

func (p *Player) stopEndTimer() {
	if p.endTimer != nil {
		p.endTimer.Stop()
		p.endTimer = nil
	}
}
