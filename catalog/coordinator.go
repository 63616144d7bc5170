package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/maqibg/BaYin-sub000/domain"
)

// Phase identifies a stage of a library refresh.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSongs
	PhaseAlbums
	PhaseArtists
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSongs:
		return "songs"
	case PhaseAlbums:
		return "albums"
	case PhaseArtists:
		return "artists"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressEvent reports refresh progress. It feeds status display only;
// playback correctness never depends on it.
type ProgressEvent struct {
	Phase     Phase
	Total     int
	Processed int
	Skipped   int
	Errors    int
}

// Provider is the external catalog collaborator.
type Provider interface {
	ListSongs(ctx context.Context) ([]domain.Track, error)
	ListAlbums(ctx context.Context) ([]domain.Album, error)
	ListArtists(ctx context.Context) ([]domain.Artist, error)
	LibraryStats(ctx context.Context) (domain.LibraryStats, error)
	CoverURLs(hashes []string, sizeHint int) map[string]string
}

// Coordinator merges provider snapshots into the catalog and notifies
// subscribers when the library changed. Notifications are best-effort
// at-least-once; subscribers must be idempotent and must not block, they
// run on the refreshing goroutine.
type Coordinator struct {
	provider Provider
	catalog  *Catalog
	logger   *log.Logger

	mux         sync.Mutex
	subscribers []func()
	progressFns []func(ProgressEvent)

	refreshMux sync.Mutex

	cron *cron.Cron
}

// NewCoordinator creates a Coordinator around an empty catalog.
func NewCoordinator(provider Provider, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Coordinator{
		provider: provider,
		catalog:  NewCatalog(),
		logger:   logger,
	}
}

// Catalog returns the live snapshot this coordinator maintains.
func (c *Coordinator) Catalog() *Catalog {
	return c.catalog
}

// Subscribe registers a library-changed callback.
func (c *Coordinator) Subscribe(fn func()) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// SubscribeProgress registers a refresh-progress callback.
func (c *Coordinator) SubscribeProgress(fn func(ProgressEvent)) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.progressFns = append(c.progressFns, fn)
}

func (c *Coordinator) notifyChanged() {
	c.mux.Lock()
	subscribers := append([]func(){}, c.subscribers...)
	c.mux.Unlock()
	for _, fn := range subscribers {
		fn()
	}
}

func (c *Coordinator) emitProgress(event ProgressEvent) {
	c.mux.Lock()
	fns := append([]func(ProgressEvent){}, c.progressFns...)
	c.mux.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

// Refresh pulls a full snapshot from the provider and swaps it in. A
// failed refresh leaves the previous snapshot untouched. Refreshes are
// serialized; concurrent calls queue up behind the running one.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.refreshMux.Lock()
	defer c.refreshMux.Unlock()

	c.emitProgress(ProgressEvent{Phase: PhaseSongs})
	tracks, err := c.provider.ListSongs(ctx)
	if err != nil {
		c.emitProgress(ProgressEvent{Phase: PhaseSongs, Errors: 1})
		return fmt.Errorf("refresh songs: %w", err)
	}
	c.emitProgress(ProgressEvent{Phase: PhaseSongs, Total: len(tracks), Processed: len(tracks)})

	c.emitProgress(ProgressEvent{Phase: PhaseAlbums})
	albums, err := c.provider.ListAlbums(ctx)
	if err != nil {
		c.emitProgress(ProgressEvent{Phase: PhaseAlbums, Errors: 1})
		return fmt.Errorf("refresh albums: %w", err)
	}
	c.emitProgress(ProgressEvent{Phase: PhaseAlbums, Total: len(albums), Processed: len(albums)})

	c.emitProgress(ProgressEvent{Phase: PhaseArtists})
	artists, err := c.provider.ListArtists(ctx)
	if err != nil {
		c.emitProgress(ProgressEvent{Phase: PhaseArtists, Errors: 1})
		return fmt.Errorf("refresh artists: %w", err)
	}
	c.emitProgress(ProgressEvent{Phase: PhaseArtists, Total: len(artists), Processed: len(artists)})

	covers := c.provider.CoverURLs(coverRefs(tracks, albums, artists), coverSizeHint)

	c.catalog.Replace(tracks, albums, artists, covers)
	stats := c.catalog.Stats()
	c.logger.Info("library refreshed",
		"songs", stats.Songs, "albums", stats.Albums, "artists", stats.Artists,
		"covers", len(covers))

	c.emitProgress(ProgressEvent{Phase: PhaseDone, Total: stats.Songs, Processed: stats.Songs})
	c.notifyChanged()
	return nil
}

// coverSizeHint is the thumbnail edge length requested from the server.
// Servers that ignore the hint return the original image.
const coverSizeHint = 300

// coverRefs collects the distinct cover art references of a snapshot.
func coverRefs(tracks []domain.Track, albums []domain.Album, artists []domain.Artist) []string {
	seen := make(map[string]bool)
	refs := make([]string, 0, len(albums))
	add := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	for _, t := range tracks {
		add(t.CoverArt)
	}
	for _, a := range albums {
		add(a.CoverArt)
	}
	for _, a := range artists {
		add(a.CoverArt)
	}
	return refs
}

// StartPeriodicRefresh schedules background refreshes on a cron
// expression ("@every 15m" style specs included). Refresh failures are
// logged and the schedule keeps running.
func (c *Coordinator) StartPeriodicRefresh(schedule string) error {
	if c.cron != nil {
		return fmt.Errorf("periodic refresh already started")
	}
	runner := cron.New()
	_, err := runner.AddFunc(schedule, func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Error("periodic refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	c.cron = runner
	c.cron.Start()
	return nil
}

// Stop halts the periodic refresh schedule, waiting for a running job.
func (c *Coordinator) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
		c.cron = nil
	}
}
