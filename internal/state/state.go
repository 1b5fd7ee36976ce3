// Package state models the connection state of the sync engine and fans it
// out to observers (banner, logs) without ever blocking the engine.
package state

import "sync"

// State is the engine's connection state. The engine is the only writer;
// everything else observes through a Broadcaster.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Broadcaster publishes state transitions to any number of subscribers.
// Each subscriber owns a size-1 buffered channel: a slow consumer only ever
// misses intermediate transitions, never the most recent one.
type Broadcaster struct {
	mu   sync.Mutex
	last State
	subs []chan State
}

// NewBroadcaster returns a Broadcaster holding Disconnected as the initial
// state, matching a freshly started engine.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{last: Disconnected}
}

// Set publishes a new state. Repeats of the current state are dropped so
// subscribers only wake on transitions. Never blocks.
func (b *Broadcaster) Set(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == b.last {
		return
	}
	b.last = s
	for _, ch := range b.subs {
		coalesce(ch, s)
	}
}

// Last returns the most recently published state.
func (b *Broadcaster) Last() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Subscribe registers a new observer. The current state is delivered
// immediately so late subscribers still render something.
func (b *Broadcaster) Subscribe() <-chan State {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan State, 1)
	ch <- b.last
	b.subs = append(b.subs, ch)
	return ch
}

// coalesce replaces a pending undelivered value with the newer one.
func coalesce(ch chan State, s State) {
	for {
		select {
		case ch <- s:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
