package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

const version = "0.3.0"

func main() {
	runner := NewRunner(os.Stdout)

	app := &cli.Command{
		Name:     "bayin",
		Usage:    "Headless playback core for Subsonic and Jellyfin libraries",
		Version:  version,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
		logger.Fatalf("application error: %v", err)
	}
}
