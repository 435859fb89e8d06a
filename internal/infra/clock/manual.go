package clock

import (
	"sync"
	"time"
)

// Manual is a Clock driven by virtual time. Callbacks run synchronously from
// Advance, in deadline order.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

// NewManual creates a manual clock at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	clock    *Manual
	deadline time.Duration
	seq      uint64
	f        func()
	done     bool
}

// AfterFunc schedules f to run once Advance reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{clock: m, deadline: m.now + max(d, 0), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.removeLocked(t)
	return true
}

// Advance moves virtual time forward by d, running every callback whose
// deadline is reached. Callbacks scheduled while advancing run too if they
// fall within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		next := m.nextLocked(target)
		if next == nil {
			break
		}
		next.done = true
		m.removeLocked(next)
		m.now = next.deadline
		m.mu.Unlock()
		next.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) nextLocked(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.deadline > target {
			continue
		}
		if next == nil || t.deadline < next.deadline || (t.deadline == next.deadline && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, c := range m.timers {
		if c == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
