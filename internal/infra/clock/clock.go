// Package clock provides the time-delay primitive used for auto-advance.
package clock

import (
	"context"
	"time"
)

// Timer is a pending delayed callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or the timer was already stopped.
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is a Clock backed by time.AfterFunc. Expired callbacks are handed to
// a dispatch function, typically one that posts them onto an event loop.
type Real struct {
	dispatch func(func())
}

// NewReal creates a real clock. A nil dispatch runs callbacks on the timer's
// own goroutine.
func NewReal(dispatch func(func())) *Real {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Real{dispatch: dispatch}
}

// AfterFunc schedules f after d.
func (r *Real) AfterFunc(d time.Duration, f func()) Timer {
	ctx, cancel := context.WithCancel(context.Background())
	t := &realTimer{ctx: ctx, cancel: cancel}
	t.timer = time.AfterFunc(d, func() {
		r.dispatch(func() {
			// Stopped after expiry but before dispatch
			if ctx.Err() != nil {
				return
			}
			cancel()
			f()
		})
	})
	return t
}

type realTimer struct {
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *realTimer) Stop() bool {
	if t.ctx.Err() != nil {
		return false
	}
	t.cancel()
	t.timer.Stop()
	return true
}
