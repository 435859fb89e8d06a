package autoadvance

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/infra/clock"
)

// Player events observed by AutoAdvance.
const (
	EventEnded event.Type = "ended"
	EventPlay  event.Type = "play"
)

// Host is the part of the player AutoAdvance depends on.
type Host interface {
	clock.Clock
	One(t event.Type, h event.Handler) event.ListenerID
	Off(t event.Type, id event.ListenerID)
}

// Option configures an AutoAdvance.
type Option func(*AutoAdvance)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *AutoAdvance) { a.log = l }
}

// AutoAdvance calls an advance function a fixed delay after the player
// reports that playback ended. At most one "ended" listener, one "play"
// listener and one timer exist at any time.
type AutoAdvance struct {
	mu sync.Mutex

	host    Host
	advance func()

	delay    float64 // Seconds, meaningful only when hasDelay
	hasDelay bool

	armGen  uint64 // Invalidates stale "ended" handlers
	endedID event.ListenerID

	timerGen uint64 // Invalidates stale timers and "play" handlers
	timer    clock.Timer
	playID   event.ListenerID

	log zerolog.Logger
}

// New creates an idle AutoAdvance. advance is called when a countdown ends.
func New(host Host, advance func(), opts ...Option) *AutoAdvance {
	a := &AutoAdvance{
		host:    host,
		advance: advance,
		log:     zlog.Logger.With().Str("component", "autoadvance").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetDelay arms auto-advance with a delay in seconds, replacing any previous
// listener or pending countdown. A negative, NaN or infinite delay disables
// auto-advance instead.
func (a *AutoAdvance) SetDelay(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setDelayLocked(seconds)
}

func (a *AutoAdvance) setDelayLocked(seconds float64) {
	a.resetLocked()

	if !validDelay(seconds) {
		a.log.Debug().Msgf("autoadvance: disabled: delay=%v", seconds)
		return
	}

	a.delay = seconds
	a.hasDelay = true
	a.armGen++
	gen := a.armGen
	a.endedID = a.host.One(EventEnded, func(event.Event) {
		a.onEnded(gen)
	})
	a.log.Debug().Msgf("autoadvance: armed: delay=%vs", seconds)
}

// Delay returns the configured delay in seconds.
// ok is false when auto-advance is disabled.
func (a *AutoAdvance) Delay() (seconds float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.delay, a.hasDelay
}

// State returns the current state.
func (a *AutoAdvance) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.timer != nil:
		return StateCountingDown
	case a.endedID != "":
		return StateArmed
	default:
		return StateIdle
	}
}

// Reset cancels any pending countdown, detaches listeners and disables
// auto-advance. It is safe to call repeatedly from any state.
func (a *AutoAdvance) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *AutoAdvance) resetLocked() {
	a.clearTimeoutLocked()
	if a.endedID != "" {
		a.host.Off(EventEnded, a.endedID)
		a.endedID = ""
	}
	a.armGen++
	a.delay = 0
	a.hasDelay = false
}

// clearTimeoutLocked cancels the pending countdown and its "play" listener.
func (a *AutoAdvance) clearTimeoutLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.playID != "" {
		a.host.Off(EventPlay, a.playID)
		a.playID = ""
	}
	a.timerGen++
}

// onEnded starts the countdown.
func (a *AutoAdvance) onEnded(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.armGen || !a.hasDelay {
		return
	}
	// The one-shot listener has been consumed
	a.endedID = ""

	a.clearTimeoutLocked()
	timerGen := a.timerGen

	// Resuming playback during the countdown cancels it and re-arms
	a.playID = a.host.One(EventPlay, func(event.Event) {
		a.onPlay(timerGen)
	})

	d := time.Duration(a.delay * float64(time.Second))
	a.timer = a.host.AfterFunc(d, func() {
		a.expire(timerGen)
	})
	a.log.Debug().Msgf("autoadvance: counting down: delay=%v", d)
}

func (a *AutoAdvance) onPlay(timerGen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if timerGen != a.timerGen || a.timer == nil {
		return
	}
	// The one-shot listener has been consumed
	a.playID = ""
	a.log.Debug().Msg("autoadvance: playback resumed, countdown cancelled")
	a.setDelayLocked(a.delay)
}

func (a *AutoAdvance) expire(timerGen uint64) {
	a.mu.Lock()
	if timerGen != a.timerGen || a.timer == nil {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.clearTimeoutLocked()
	advance := a.advance
	a.mu.Unlock()

	a.log.Debug().Msg("autoadvance: countdown ended, advancing")
	if advance != nil {
		advance()
	}
}

func validDelay(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds >= 0
}
