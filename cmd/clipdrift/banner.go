package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/huberdf/clipdrift/internal/state"
)

var (
	styleConnected    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	styleConnecting   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	styleDisconnected = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
	styleLabel        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// renderBanner keeps a one-line status indicator on w, redrawn in place on
// every state transition. It exits with ctx, leaving the cursor on a fresh
// line so the shell prompt is not glued to the banner.
func renderBanner(ctx context.Context, w io.Writer, states <-chan state.State) {
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return
		case s := <-states:
			fmt.Fprintf(w, "\r\033[K%s %s", bannerDot(s), styleLabel.Render(s.String()))
		}
	}
}

func bannerDot(s state.State) string {
	switch s {
	case state.Connected:
		return styleConnected.Render("●")
	case state.Connecting:
		return styleConnecting.Render("◌")
	default:
		return styleDisconnected.Render("○")
	}
}
