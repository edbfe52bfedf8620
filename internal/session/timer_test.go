package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInactivityTimer_FiresOnExpire(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := newInactivityTimer(10*time.Millisecond, func() { fired <- struct{}{} })
	timer.start()
	defer timer.stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("inactivity timer never fired")
	}
}

func TestInactivityTimer_StopPreventsFiring(t *testing.T) {
	var fired atomic.Bool
	timer := newInactivityTimer(20*time.Millisecond, func() { fired.Store(true) })
	timer.start()
	timer.stop()

	time.Sleep(100 * time.Millisecond)
	require.False(t, fired.Load())
}

func TestInactivityTimer_RestartPostponesExpiry(t *testing.T) {
	var fired atomic.Bool
	timer := newInactivityTimer(50*time.Millisecond, func() { fired.Store(true) })
	timer.start()

	time.Sleep(30 * time.Millisecond)
	timer.start() // activity observed: push the deadline back out
	require.False(t, fired.Load(), "restart should have cancelled the pending expiry")

	time.Sleep(30 * time.Millisecond)
	require.False(t, fired.Load(), "should still be within the restarted window")

	time.Sleep(40 * time.Millisecond)
	require.True(t, fired.Load())
	timer.stop()
}

func TestNewInactivityTimer_ZeroDurationUsesDefault(t *testing.T) {
	timer := newInactivityTimer(0, func() {})
	require.Equal(t, DefaultInactivityTimeout, timer.duration)
}
