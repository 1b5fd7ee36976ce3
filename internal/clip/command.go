package clip

import (
	atotto "github.com/atotto/clipboard"
)

// commandBackend shells out through github.com/atotto/clipboard
// (pbpaste/pbcopy on macOS, xclip/xsel/wl-clipboard on Linux, the win32 API
// on Windows). It is the secondary path when the native backend is down.
type commandBackend struct{}

func (commandBackend) name() string { return "command" }

func (commandBackend) read() (string, error) {
	return atotto.ReadAll()
}

func (commandBackend) write(text string) error {
	return atotto.WriteAll(text)
}
