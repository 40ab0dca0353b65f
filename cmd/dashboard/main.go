// KevinbotLib Dashboard shows live robot telemetry from Redis as widgets on
// a snapping grid.
//
// Build:
//
//	go build -o dashboard ./cmd/dashboard
//
// Using fyne-cross for packaged builds:
//
//	fyne-cross windows -arch=amd64
//	fyne-cross darwin  -arch=amd64,arm64
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kevinbotlib/dashboard/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
