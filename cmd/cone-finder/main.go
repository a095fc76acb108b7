// Command cone-finder drives a small robot's camera until it sees a cone of
// the requested color, then reports where the cone sits in the frame.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/ironsheep/cone-finder/internal/finder"
	"github.com/ironsheep/cone-finder/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()

	if err != nil {
		warn := color.New(color.FgYellow)
		switch {
		case errors.Is(err, finder.ErrCancelled):
			warn.Fprintln(os.Stderr, "search cancelled, no cone found")
		case errors.Is(err, finder.ErrBudgetExhausted):
			warn.Fprintln(os.Stderr, "no cone found:", err)
		default:
			color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(session.ExitCode(err))
	}
}
