package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
		return Disconnected
	}
}

func TestSubscribeDeliversCurrentState(t *testing.T) {
	b := NewBroadcaster()
	b.Set(Connected)

	ch := b.Subscribe()
	assert.Equal(t, Connected, recv(t, ch))
}

func TestSetPublishesTransitions(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	require.Equal(t, Disconnected, recv(t, ch))

	b.Set(Connecting)
	assert.Equal(t, Connecting, recv(t, ch))

	b.Set(Connected)
	assert.Equal(t, Connected, recv(t, ch))
	assert.Equal(t, Connected, b.Last())
}

func TestSlowSubscriberSeesLatestOnly(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	require.Equal(t, Disconnected, recv(t, ch))

	// Nobody draining: intermediate transitions coalesce away.
	b.Set(Connecting)
	b.Set(Connected)
	b.Set(Disconnected)
	b.Set(Connecting)

	assert.Equal(t, Connecting, recv(t, ch))
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra state %v", s)
	default:
	}
}

func TestRepeatedStateIsDropped(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	require.Equal(t, Disconnected, recv(t, ch))

	b.Set(Disconnected)
	select {
	case s := <-ch:
		t.Fatalf("duplicate state published: %v", s)
	default:
	}
}

func TestSetNeverBlocksWithoutConsumers(t *testing.T) {
	b := NewBroadcaster()
	_ = b.Subscribe() // never drained
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Set(Connecting)
			b.Set(Connected)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set blocked on an undrained subscriber")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}
