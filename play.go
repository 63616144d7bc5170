package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/maqibg/BaYin-sub000/catalog"
	"github.com/maqibg/BaYin-sub000/device"
	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/lyrics"
	"github.com/maqibg/BaYin-sub000/player"
	"github.com/maqibg/BaYin-sub000/queue"
	"github.com/maqibg/BaYin-sub000/resolver"
	"github.com/maqibg/BaYin-sub000/session"
)

// Play syncs the library, queues the matching tracks and blocks until
// playback stops or the process is interrupted. Sequence and shuffle modes
// wrap around, so the usual exit is an interrupt.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	logger := env.logger

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()
	prefs := st.Preferences()

	server, err := env.libraryServer(prefs.CurrentServerID)
	if err != nil {
		return err
	}
	provider := catalog.NewSubsonicProvider(env.subsonic, server)
	coordinator := catalog.NewCoordinator(provider, logger.With("component", "catalog"))
	defer coordinator.Stop()

	r.writePlainln("syncing library from %s", server.Name)
	if err := coordinator.Refresh(ctx); err != nil {
		return fmt.Errorf("library refresh: %w", err)
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	selected := selectTracks(coordinator.Catalog().Tracks(), query, cmd.Int("limit"))
	if len(selected) == 0 {
		if query == "" {
			return fmt.Errorf("the library is empty")
		}
		return fmt.Errorf("no tracks match %q", query)
	}

	transport, err := player.NewMPVTransport(ctx)
	if err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	defer transport.Close()

	ctrl, err := session.NewController(session.Config{
		Queue:     queue.New(),
		Tracks:    coordinator.Catalog(),
		Resolver:  resolver.New(env.registry, env.router, nil),
		Transport: transport,
		Lyrics:    lyrics.NewFetcher(env.router, lyrics.NewFileSource(), env.registry),
		Prefs:     st,
		Logger:    logger.With("component", "session"),
	})
	if err != nil {
		return err
	}

	mode := prefs.PlayMode
	if flag := cmd.String("mode"); flag != "" {
		mode = domain.ParsePlayMode(flag)
	}
	ctrl.SetMode(mode)

	volume := prefs.Volume
	if flag := cmd.Int("volume"); flag >= 0 {
		volume = flag
	}
	if err := ctrl.SetVolume(volume); err != nil {
		logger.Warn("setting volume failed", "volume", volume, "error", err)
	}

	updates := make(chan session.Snapshot, 64)
	ctrl.Subscribe(func(snap session.Snapshot) {
		select {
		case updates <- snap:
		default: // a stale display update is fine to drop
		}
	})

	coordinator.Subscribe(func() { ctrl.OnLibraryChanged(ctx) })
	if schedule := env.cfg.Library.RefreshSchedule; schedule != "" {
		if err := coordinator.StartPeriodicRefresh(schedule); err != nil {
			logger.Warn("periodic refresh disabled", "schedule", schedule, "error", err)
		}
	}

	monitor := device.NewMonitor(func() {
		if err := ctrl.Pause(); err != nil {
			logger.Debug("pause on device disconnect", "error", err)
		}
	}, logger.With("component", "device"))
	monitor.Start(ctx)

	go ctrl.Run(ctx)

	ids := make([]string, len(selected))
	for i, track := range selected {
		ids[i] = track.ID
	}
	if err := ctrl.PlayQueue(ctx, ids, cmd.String("start")); err != nil {
		return err
	}
	r.writePlainln("queued %d tracks in %s mode", len(ids), mode)

	return r.watchPlayback(ctx, ctrl, updates)
}

// watchPlayback prints session transitions until the queue ends or the
// context is canceled.
func (r *Runner) watchPlayback(ctx context.Context, ctrl *session.Controller, updates <-chan session.Snapshot) error {
	var last session.Snapshot
	for {
		select {
		case <-ctx.Done():
			if err := ctrl.Stop(); err != nil {
				return fmt.Errorf("stop playback: %w", err)
			}
			r.writePlainln("interrupted, playback stopped")
			return nil
		case snap := <-updates:
			r.printTransition(last, snap)
			last = snap
			if snap.State == session.StateStopped {
				if snap.Err != nil {
					return fmt.Errorf("playback stopped: %w", snap.Err)
				}
				r.writePlainln("queue finished")
				return nil
			}
		}
	}
}

// printTransition renders the user-visible difference between two session
// snapshots: state changes, track changes and newly active lyric lines.
func (r *Runner) printTransition(prev, cur session.Snapshot) {
	if cur.State != prev.State || cur.Track.ID != prev.Track.ID {
		switch cur.State {
		case session.StateResolving:
			r.writePlainln("resolving %s", describeTrack(cur.Track))
		case session.StatePlaying:
			r.writePlainln("playing %s [%s]", describeTrack(cur.Track), domain.FormatDuration(cur.Track.Duration))
		case session.StatePaused:
			r.writePlainln("paused %s", describeTrack(cur.Track))
		}
	}
	if cur.LyricIndex != prev.LyricIndex && cur.LyricIndex >= 0 && cur.LyricIndex < len(cur.Lyrics.Lines) {
		if text := cur.Lyrics.Lines[cur.LyricIndex].Text; text != "" {
			r.writePlainln("  %s", text)
		}
	}
}

func describeTrack(track domain.Track) string {
	if track.Artist == "" {
		return track.Title
	}
	return fmt.Sprintf("%s - %s", track.Title, track.Artist)
}

// selectTracks filters the library by a case-insensitive substring match on
// title, artist and album. An empty query keeps everything; a positive
// limit caps the result.
func selectTracks(tracks []domain.Track, query string, limit int) []domain.Track {
	selected := tracks
	if query != "" {
		needle := strings.ToLower(query)
		selected = nil
		for _, track := range tracks {
			hay := strings.ToLower(track.Title + " " + track.Artist + " " + track.Album)
			if strings.Contains(hay, needle) {
				selected = append(selected, track)
			}
		}
	}
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
