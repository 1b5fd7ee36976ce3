// Package engine drives the bidirectional sync loop: it owns the
// reconnect/backoff state machine, the per-session receiver/sender/heartbeat
// tasks, and the snapshot that stops an echoed clipboard value from being
// re-sent.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/huberdf/clipdrift/internal/clip"
	"github.com/huberdf/clipdrift/internal/envelope"
	"github.com/huberdf/clipdrift/internal/notify"
	"github.com/huberdf/clipdrift/internal/state"
)

// notifyTitle heads every user-facing notification.
const notifyTitle = "Clipboard sync"

// ErrAttemptsExhausted is returned by Run when a finite reconnect budget has
// been spent. It is the only way the engine stops on its own.
var ErrAttemptsExhausted = errors.New("reconnect attempts exhausted")

// Session is the live connection the engine drives. transport.Session
// satisfies it; tests substitute fakes.
type Session interface {
	Send(msg *envelope.Message) error
	Receive() (*envelope.Message, error)
	Ping(ctx context.Context) error
	Close() error
}

// Dialer produces one connection attempt per call.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Session, error)

func (f DialerFunc) Dial(ctx context.Context) (Session, error) { return f(ctx) }

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	// Source tags outbound envelopes so the relay can attribute them.
	Source string

	// PollInterval is the local clipboard poll period.
	PollInterval time.Duration
	// ReadFailurePause is how long the sender rests after readFailureLimit
	// consecutive clipboard read failures.
	ReadFailurePause time.Duration

	// BaseDelay seeds the reconnect backoff.
	BaseDelay time.Duration
	// MaxAttempts bounds consecutive failures; 0 means retry forever.
	MaxAttempts int

	// PingInterval is the heartbeat period. The pong wait is owned by the
	// transport session.
	PingInterval time.Duration
}

const (
	defaultPollInterval     = 500 * time.Millisecond
	defaultReadFailurePause = 2 * time.Second
	defaultBaseDelay        = 5 * time.Second
	defaultPingInterval     = 30 * time.Second

	readFailureLimit = 5
)

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.ReadFailurePause <= 0 {
		c.ReadFailurePause = defaultReadFailurePause
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	return c
}

// Engine is the sync engine. Create with New, drive with Run.
type Engine struct {
	cfg      Config
	dialer   Dialer
	clip     clip.Accessor
	states   *state.Broadcaster
	notifier notify.Notifier

	// mu guards snapshot and snapSet. Both the sender's read-and-compare
	// and the receiver's write-and-update run entirely inside it, so a
	// value just applied from the relay can never race past the compare
	// and be sent back.
	mu       sync.Mutex
	snapshot string
	snapSet  bool
}

// New assembles an engine. states and notifier may be nil, in which case a
// private broadcaster and a log-only notifier are used.
func New(cfg Config, d Dialer, acc clip.Accessor, states *state.Broadcaster, n notify.Notifier) *Engine {
	if states == nil {
		states = state.NewBroadcaster()
	}
	if n == nil {
		n = notify.Log()
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		dialer:   d,
		clip:     acc,
		states:   states,
		notifier: n,
	}
}

// Run drives the reconnect loop until ctx is cancelled (returns nil) or a
// finite reconnect budget is exhausted (returns ErrAttemptsExhausted).
func (e *Engine) Run(ctx context.Context) error {
	e.primeSnapshot()

	failures := 0
	for {
		e.states.Set(state.Connecting)
		slog.Info("connecting to relay", "attempt", failures+1)

		sess, err := e.dialer.Dial(ctx)
		if err == nil {
			failures = 0
			e.states.Set(state.Connected)
			slog.Info("connected, syncing")
			e.notifier.Notify(notifyTitle, "Connected to relay")

			err = e.runSession(ctx, sess)
			_ = sess.Close()
		}

		e.states.Set(state.Disconnected)
		if ctx.Err() != nil {
			return nil
		}

		failures++
		if e.cfg.MaxAttempts > 0 && failures > e.cfg.MaxAttempts {
			slog.Error("reconnect attempts exhausted, stopping",
				"attempts", e.cfg.MaxAttempts)
			e.notifier.Notify(notifyTitle, "Connection failed, giving up")
			return ErrAttemptsExhausted
		}

		delay := Backoff(e.cfg.BaseDelay, failures)
		slog.Warn("disconnected", "err", err, "consecutive_failures", failures, "retry_in", delay)
		if failures == 1 {
			e.notifier.Notify(notifyTitle, "Disconnected — reconnecting…")
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// primeSnapshot seeds the snapshot from the current clipboard so startup
// content is not pushed to the relay as if it had just been copied.
func (e *Engine) primeSnapshot() {
	text, err := e.clip.Read()
	if err != nil {
		slog.Warn("initial clipboard read failed", "err", err)
		return
	}
	if text == "" {
		return
	}
	e.mu.Lock()
	e.snapshot = text
	e.snapSet = true
	e.mu.Unlock()
	slog.Debug("clipboard snapshot primed", "chars", len(text))
}
