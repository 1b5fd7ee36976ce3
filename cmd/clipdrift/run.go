package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/huberdf/clipdrift/internal/clip"
	"github.com/huberdf/clipdrift/internal/engine"
	"github.com/huberdf/clipdrift/internal/logging"
	"github.com/huberdf/clipdrift/internal/notify"
	"github.com/huberdf/clipdrift/internal/state"
	"github.com/huberdf/clipdrift/internal/transport"
)

func runSync(v *viper.Viper, args []string) error {
	setupLogging(v)

	server := v.GetString("server")
	if len(args) == 1 {
		server = args[0]
	}
	endpoint, err := relayURL(server, v.GetInt("port"))
	if err != nil {
		return err
	}

	source := v.GetString("source")
	slog.Info("clipdrift starting",
		"version", Version,
		"relay", endpoint,
		"source", source,
		"authenticated", v.GetString("token") != "",
	)

	acc := clip.System()
	slog.Info("clipboard backend", "name", acc.Name())

	var notifier notify.Notifier = notify.Desktop()
	if v.GetBool("no-notify") {
		notifier = notify.Log()
	}

	dialer := transport.Dialer{
		URL:        endpoint,
		Credential: v.GetString("token"),
		PongWait:   v.GetDuration("ping-timeout"),
	}

	states := state.NewBroadcaster()
	eng := engine.New(
		engine.Config{
			Source:       source,
			PollInterval: v.GetDuration("poll-interval"),
			BaseDelay:    v.GetDuration("base-delay"),
			MaxAttempts:  v.GetInt("max-reconnects"),
			PingInterval: v.GetDuration("ping-interval"),
		},
		sessionDialer{dialer},
		acc,
		states,
		notifier,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if v.GetBool("banner") || logging.IsTTY(os.Stdout) {
		go renderBanner(ctx, os.Stdout, states.Subscribe())
	}

	return eng.Run(ctx)
}

// sessionDialer adapts transport.Dialer to the engine's Dialer interface.
// The indirection keeps a failed dial from handing the engine a non-nil
// interface wrapping a nil *transport.Session.
type sessionDialer struct {
	d transport.Dialer
}

func (sd sessionDialer) Dial(ctx context.Context) (engine.Session, error) {
	sess, err := sd.d.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// relayURL turns what the user typed into a full websocket endpoint.
// Accepted forms: "host", "host:port", "ws://host:port", "wss://host/path".
// Bare hosts get the default port and the standard client path.
func relayURL(server string, port int) (string, error) {
	if server == "" {
		return "", fmt.Errorf("no relay server given")
	}

	if strings.Contains(server, "://") {
		u, err := url.Parse(server)
		if err != nil {
			return "", fmt.Errorf("relay url: %w", err)
		}
		switch u.Scheme {
		case "ws", "wss":
		default:
			return "", fmt.Errorf("relay url: unsupported scheme %q (want ws or wss)", u.Scheme)
		}
		if u.Path == "" || u.Path == "/" {
			u.Path = transport.DefaultPath
		}
		return u.String(), nil
	}

	host := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		host = net.JoinHostPort(server, fmt.Sprintf("%d", port))
	}
	return "ws://" + host + transport.DefaultPath, nil
}
