package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huberdf/clipdrift/internal/envelope"
	"github.com/huberdf/clipdrift/internal/transport"
)

// runSession runs the receiver, sender and heartbeat tasks for one connected
// session. The first task to fail ends the session: the others are cancelled
// and the session closed before runSession returns.
//
// Only transport-level failures end a session. Clipboard I/O errors and
// malformed payloads are absorbed by the task that hit them.
func (e *Engine) runSession(ctx context.Context, sess Session) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() { errCh <- e.receiveLoop(sctx, sess) }()
	go func() { errCh <- e.sendLoop(sctx, sess) }()
	go func() { errCh <- e.heartbeatLoop(sctx, sess) }()

	err := <-errCh
	cancel()
	_ = sess.Close() // unblocks the receiver's pending Receive
	<-errCh
	<-errCh

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// receiveLoop applies relay updates to the local clipboard. It ends when the
// receive stream ends; malformed frames and clipboard write failures only
// skip that frame.
func (e *Engine) receiveLoop(ctx context.Context, sess Session) error {
	for {
		msg, err := sess.Receive()
		if err != nil {
			var pe *transport.ProtocolError
			if errors.As(err, &pe) {
				slog.Warn("malformed frame skipped", "err", err)
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receiver: %w", err)
		}

		if msg.Type != envelope.TypeClipboard {
			slog.Debug("ignoring frame", "type", msg.Type)
			continue
		}
		if msg.Text == "" {
			continue
		}
		e.applyRemote(msg)
	}
}

// applyRemote writes one remote value to the clipboard. The compare, the
// clipboard write and the snapshot update form one critical section so the
// sender can never observe the new clipboard value with a stale snapshot.
func (e *Engine) applyRemote(msg *envelope.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapSet && msg.Text == e.snapshot {
		return
	}
	if err := e.clip.Write(msg.Text); err != nil {
		slog.Error("clipboard write failed, frame dropped", "err", err)
		return
	}
	e.snapshot = msg.Text
	e.snapSet = true
	slog.Info("applied remote clipboard", "source", msg.Source, "chars", len(msg.Text))
}

// sendLoop polls the local clipboard and pushes changes to the relay.
// Read failures are never fatal: after readFailureLimit consecutive ones the
// loop rests for ReadFailurePause and starts over.
func (e *Engine) sendLoop(ctx context.Context, sess Session) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	readFailures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		text, changed, err := e.pollLocal()
		if err != nil {
			readFailures++
			if readFailures >= readFailureLimit {
				slog.Warn("clipboard reads keep failing, pausing",
					"failures", readFailures, "pause", e.cfg.ReadFailurePause)
				readFailures = 0
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(e.cfg.ReadFailurePause):
				}
			}
			continue
		}
		readFailures = 0

		if !changed {
			continue
		}
		if err := sess.Send(envelope.NewClipboard(text, e.cfg.Source)); err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		slog.Info("sent local clipboard", "chars", len(text))
	}
}

// pollLocal reads the clipboard and, when the text is new, claims it by
// updating the snapshot. Claim-before-send keeps the next poll cycle from
// sending the same value twice even if the send itself is slow.
func (e *Engine) pollLocal() (text string, changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	text, err = e.clip.Read()
	if err != nil {
		return "", false, err
	}
	if text == "" || (e.snapSet && text == e.snapshot) {
		return "", false, nil
	}
	e.snapshot = text
	e.snapSet = true
	return text, true, nil
}

// heartbeatLoop probes the relay. A missed pong is a session failure: the
// relay may be gone even while sender and receiver look idle-but-healthy.
func (e *Engine) heartbeatLoop(ctx context.Context, sess Session) error {
	ticker := time.NewTicker(e.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := sess.Ping(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("heartbeat: %w", err)
		}
	}
}
