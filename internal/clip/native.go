package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// nativeBackend uses golang.design/x/clipboard. Init is attempted once per
// process; on headless hosts it fails and the command backend takes over.
type nativeBackend struct{}

func newNativeBackend() (backend, error) {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("clipboard init: %w", initErr)
	}
	return nativeBackend{}, nil
}

func (nativeBackend) name() string { return "native" }

func (nativeBackend) read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (nativeBackend) write(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
