package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/maqibg/BaYin-sub000/catalog"
	"github.com/maqibg/BaYin-sub000/lyrics"
)

// Lyrics finds the first track matching the query and prints its
// synchronized lyrics with timestamps.
func (r *Runner) Lyrics(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	server, err := env.libraryServer("")
	if err != nil {
		return err
	}
	provider := catalog.NewSubsonicProvider(env.subsonic, server)
	coordinator := catalog.NewCoordinator(provider, env.logger.With("component", "catalog"))
	if err := coordinator.Refresh(ctx); err != nil {
		return fmt.Errorf("library refresh: %w", err)
	}

	matches := selectTracks(coordinator.Catalog().Tracks(), query, 1)
	if len(matches) == 0 {
		return fmt.Errorf("no track matches %q", query)
	}
	track := matches[0]

	fetcher := lyrics.NewFetcher(env.router, lyrics.NewFileSource(), env.registry)
	doc, err := fetcher.ForTrack(ctx, track)
	if errors.Is(err, lyrics.ErrNoLyrics) {
		r.writePlainln("no lyrics available for %s", describeTrack(track))
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch lyrics: %w", err)
	}

	r.writePlainln("%s", describeTrack(track))
	for _, line := range doc.Lines {
		r.writePlainln("[%s] %s", formatLyricTime(line.Time), line.Text)
	}
	return nil
}

// formatLyricTime renders seconds as the mm:ss.cc timestamp form lyric
// sheets use.
func formatLyricTime(seconds float64) string {
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%02d:%05.2f", minutes, rest)
}
