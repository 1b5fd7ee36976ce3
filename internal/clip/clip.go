// Package clip provides text access to the system clipboard.
//
// Two backends are layered: golang.design/x/clipboard when its display
// integration initialises, with github.com/atotto/clipboard (pbcopy/pbpaste,
// xclip, xsel, ...) as the fallback path. A call that fails on the primary
// is retried on the fallback before an error surfaces; callers treat those
// errors as skip-this-cycle, never fatal.
package clip

import (
	"fmt"
	"log/slog"
)

// Accessor reads and writes the local clipboard.
type Accessor interface {
	// Name returns a human-readable name for the active backend chain.
	Name() string

	// Read returns the current clipboard text. An empty string with a nil
	// error means the clipboard is empty or holds no text.
	Read() (string, error)

	// Write replaces the clipboard text.
	Write(text string) error
}

// ReadError wraps a clipboard read failure.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("clipboard read: %v", e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a clipboard write failure.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("clipboard write: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// backend is one concrete clipboard implementation.
type backend interface {
	name() string
	read() (string, error)
	write(text string) error
}

// System returns the platform clipboard accessor. When the native backend
// cannot initialise (headless host, missing X11) only the command-line
// fallback is used; its calls may still fail, which the engine absorbs.
func System() Accessor {
	var chain []backend
	if nat, err := newNativeBackend(); err != nil {
		slog.Warn("native clipboard unavailable, using fallback only", "err", err)
	} else {
		chain = append(chain, nat)
	}
	chain = append(chain, commandBackend{})
	return &fallbackAccessor{chain: chain}
}

// fallbackAccessor tries each backend in order and reports the last error
// when all of them fail.
type fallbackAccessor struct {
	chain []backend
}

func (a *fallbackAccessor) Name() string {
	n := ""
	for i, b := range a.chain {
		if i > 0 {
			n += " → "
		}
		n += b.name()
	}
	return n
}

func (a *fallbackAccessor) Read() (string, error) {
	var lastErr error
	for _, b := range a.chain {
		text, err := b.read()
		if err == nil {
			return text, nil
		}
		slog.Debug("clipboard backend read failed", "backend", b.name(), "err", err)
		lastErr = err
	}
	return "", &ReadError{Err: lastErr}
}

func (a *fallbackAccessor) Write(text string) error {
	var lastErr error
	for _, b := range a.chain {
		err := b.write(text)
		if err == nil {
			return nil
		}
		slog.Debug("clipboard backend write failed", "backend", b.name(), "err", err)
		lastErr = err
	}
	return &WriteError{Err: lastErr}
}
