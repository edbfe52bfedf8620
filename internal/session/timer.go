package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInactivityTimeout is used when a session's Session header did
// not advertise a timeout value.
const DefaultInactivityTimeout = 30 * time.Second

// inactivityTimer runs onExpire at most once over its whole lifetime,
// however often it is restarted: the zero-value rate.Sometimes it wraps
// onExpire in performs its action only once. Restarting cancels the
// pending expiry, so a burst of M7/M9 replies racing the timer can't
// trigger duplicate teardown attempts.
type inactivityTimer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	sometimes rate.Sometimes
	onExpire func()
}

func newInactivityTimer(duration time.Duration, onExpire func()) *inactivityTimer {
	if duration <= 0 {
		duration = DefaultInactivityTimeout
	}
	return &inactivityTimer{duration: duration, onExpire: onExpire}
}

func (t *inactivityTimer) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.timer = time.AfterFunc(t.duration, func() {
		t.sometimes.Do(t.onExpire)
	})
}

func (t *inactivityTimer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *inactivityTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// startInactivityTimer is called after a successful M6 (Sink) or once a
// Source has replied to the Sink's M6 request: spec §5 says the timer
// SHOULD start after M6, using the Session header's advertised timeout
// when present.
func (m *Machine) startInactivityTimer(timeoutSeconds int, onExpire func()) {
	dur := DefaultInactivityTimeout
	if timeoutSeconds > 0 {
		dur = time.Duration(timeoutSeconds) * time.Second
	}
	m.timer = newInactivityTimer(dur, onExpire)
	m.timer.start()
}

func (m *Machine) stopInactivityTimer() {
	if m.timer != nil {
		m.timer.stop()
	}
}
