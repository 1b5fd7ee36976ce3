// clipdrift: bidirectional clipboard sync over websocket.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huberdf/clipdrift/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clipdrift [server]",
		Short: "Keep the system clipboard in sync with a relay",
		Long: `clipdrift connects to a clipdrift relay over websocket and keeps the
local system clipboard in sync with every other device on the same relay.
Local copies are pushed to the relay; remote copies land in the local
clipboard. The connection reconnects automatically with backoff.

The relay can be given as a positional argument (host or host:port) or via
--server. Bare hosts get --port appended and the standard /ws/client path.

Config file search order (first found wins):
  /etc/clipdrift/clipdrift.toml
  $HOME/.config/clipdrift/clipdrift.toml
  path supplied via --config

All flags can be set via CLIPDRIFT_<FLAG> env vars or config-file keys.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(_ *cobra.Command, args []string) error { return runSync(v, args) },
	}

	f := cmd.Flags()
	f.String("server", "localhost", "relay host or host:port (a positional argument wins)")
	f.Int("port", 8000, "relay port, used when the host carries none")
	f.String("token", "", "bearer credential presented at the websocket handshake")
	f.String("source", defaultSource(), "identifier attached to outgoing clipboard frames")
	f.Duration("poll-interval", 500*time.Millisecond, "local clipboard poll cadence")
	f.Duration("base-delay", 5*time.Second, "reconnect backoff base delay")
	f.Int("max-reconnects", 0, "consecutive failed reconnects before giving up (0 = never)")
	f.Duration("ping-interval", 30*time.Second, "heartbeat ping cadence")
	f.Duration("ping-timeout", 10*time.Second, "how long a ping waits for its pong")
	f.Bool("banner", false, "render the status banner even when stdout is not a terminal")
	f.Bool("no-notify", false, "log connection events instead of sending desktop notifications")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipdrift %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}

// defaultSource returns the identifier stamped on outgoing frames so other
// devices can tell where a clipboard value came from.
func defaultSource() string {
	if v := os.Getenv("CLIPDRIFT_SOURCE"); v != "" {
		return v
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
