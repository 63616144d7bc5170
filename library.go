package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/maqibg/BaYin-sub000/catalog"
	"github.com/maqibg/BaYin-sub000/domain"
)

// LibraryRefresh pulls a fresh library snapshot, reporting per-phase
// progress, and prints the resulting stats next to the server's own count.
func (r *Runner) LibraryRefresh(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}

	server, err := env.libraryServer("")
	if err != nil {
		return err
	}
	provider := catalog.NewSubsonicProvider(env.subsonic, server)
	coordinator := catalog.NewCoordinator(provider, env.logger.With("component", "catalog"))
	coordinator.SubscribeProgress(func(event catalog.ProgressEvent) {
		env.logger.Info("refresh progress",
			"phase", event.Phase, "processed", event.Processed, "total", event.Total, "errors", event.Errors)
	})

	if err := coordinator.Refresh(ctx); err != nil {
		return fmt.Errorf("library refresh: %w", err)
	}

	stats := coordinator.Catalog().Stats()
	r.writePlainln("%d songs, %d albums, %d artists, %s total",
		stats.Songs, stats.Albums, stats.Artists, domain.FormatDuration(int(stats.DurationSeconds)))

	// The server's scan counter can disagree with the snapshot while a
	// remote scan is running; show it so the drift is visible.
	if remote, err := provider.LibraryStats(ctx); err == nil && remote.Songs != stats.Songs {
		r.writePlainln("server reports %d songs (scan may be in progress)", remote.Songs)
	}
	return nil
}
