package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/lyrics"
	"github.com/maqibg/BaYin-sub000/player"
	"github.com/maqibg/BaYin-sub000/queue"
)

// Config carries the collaborators a Controller drives.
type Config struct {
	Queue     *queue.Queue
	Tracks    TrackSource
	Resolver  URIResolver
	Transport player.Transport

	// Lyrics is optional; without it no lyric documents are loaded.
	Lyrics LyricSource

	// Prefs is optional; without it volume and play-mode changes are not
	// written through.
	Prefs PreferenceStore

	Logger *log.Logger
}

// Controller owns the playback session. It drives the queue, the resolver
// and the transport, and is the only component that issues transport
// commands. All mutable session state is guarded by a single mutex.
type Controller struct {
	queue     *queue.Queue
	tracks    TrackSource
	resolver  URIResolver
	transport player.Transport
	lyricSrc  LyricSource
	prefs     PreferenceStore
	logger    *log.Logger

	mux        sync.Mutex
	generation uint64
	state      State
	track      domain.Track
	uri        string
	elapsed    float64
	duration   float64
	autoPlay   bool
	lastErr    error
	doc        lyrics.Document
	lyricIdx   int
	listeners  []func(Snapshot)
}

// NewController creates a Controller in the Idle state.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("session: queue is required")
	}
	if cfg.Tracks == nil {
		return nil, fmt.Errorf("session: track source is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("session: resolver is required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("session: transport is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Controller{
		queue:     cfg.Queue,
		tracks:    cfg.Tracks,
		resolver:  cfg.Resolver,
		transport: cfg.Transport,
		lyricSrc:  cfg.Lyrics,
		prefs:     cfg.Prefs,
		logger:    logger,
		state:     StateIdle,
		lyricIdx:  -1,
	}, nil
}

// Queue returns the queue engine the session advances through.
func (c *Controller) Queue() *queue.Queue {
	return c.queue
}

// Run consumes transport notifications until the context is canceled or the
// transport shuts down. Notifications are applied in arrival order.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.transport.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case player.EventTimeUpdate:
				c.applyTimeUpdate(ev.Position, ev.Duration)
			case player.EventTrackEnded:
				c.handleTrackEnded(ctx)
			}
		}
	}
}

// Snapshot returns the current session view (thread-safe).
func (c *Controller) Snapshot() Snapshot {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a listener invoked after every session change.
// Listeners run on the goroutine that caused the change and must not call
// back into the Controller.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.listeners = append(c.listeners, fn)
}

// PlayQueue replaces the queue and starts its current entry. An empty
// trackIDs stops playback.
func (c *Controller) PlayQueue(ctx context.Context, trackIDs []string, startID string) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.queue.SetQueue(trackIDs, startID)
	id, ok := c.queue.CurrentID()
	if !ok {
		c.generation++
		if err := c.transport.Stop(); err != nil {
			c.logger.Warn("transport stop failed", "error", err)
		}
		c.stopLocked(nil)
		return nil
	}
	track, ok := c.tracks.TrackByID(id)
	if !ok {
		return fmt.Errorf("track %q not in catalog", id)
	}
	c.startLocked(ctx, track, c.queue.CurrentIndex(), true)
	return nil
}

// PlayTrack starts playback of a track by id. When the id is part of the
// queue, the queue is re-anchored to its first occurrence once the track is
// confirmed playable.
func (c *Controller) PlayTrack(ctx context.Context, id string) error {
	return c.playByID(ctx, id, true)
}

// CueTrack loads a track by id without starting playback.
func (c *Controller) CueTrack(ctx context.Context, id string) error {
	return c.playByID(ctx, id, false)
}

func (c *Controller) playByID(ctx context.Context, id string, autoPlay bool) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	track, ok := c.tracks.TrackByID(id)
	if !ok {
		return fmt.Errorf("track %q not in catalog", id)
	}
	commit := -1
	for i, qid := range c.queue.Snapshot() {
		if qid == id {
			commit = i
			break
		}
	}
	c.startLocked(ctx, track, commit, autoPlay)
	return nil
}

// Toggle flips between playing and paused. In the idle or stopped states it
// starts the queue's current entry instead, if the queue has one.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	switch c.state {
	case StatePlaying:
		if err := c.transport.SetPaused(true); err != nil {
			return err
		}
		c.state = StatePaused
		c.notifyLocked()
		return nil
	case StatePaused:
		if err := c.transport.SetPaused(false); err != nil {
			return err
		}
		c.state = StatePlaying
		c.notifyLocked()
		return nil
	case StateResolving:
		// The pending start inherits the flipped target.
		c.autoPlay = !c.autoPlay
		return nil
	default:
		idx := c.queue.CurrentIndex()
		if idx < 0 {
			if c.queue.Len() == 0 {
				return nil
			}
			idx = 0
		}
		id, ok := c.queue.IDAt(idx)
		if !ok {
			return nil
		}
		track, ok := c.tracks.TrackByID(id)
		if !ok {
			return fmt.Errorf("track %q not in catalog", id)
		}
		c.startLocked(ctx, track, idx, true)
		return nil
	}
}

// Pause suspends playback if a track is playing. Used by watchdogs that
// must never accidentally resume.
func (c *Controller) Pause() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.state != StatePlaying {
		return nil
	}
	if err := c.transport.SetPaused(true); err != nil {
		return err
	}
	c.state = StatePaused
	c.notifyLocked()
	return nil
}

// Stop unloads the transport and abandons any in-flight resolution.
func (c *Controller) Stop() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.generation++
	if err := c.transport.Stop(); err != nil {
		return err
	}
	c.stopLocked(nil)
	return nil
}

// Next starts the queue entry the play-mode selects after the current one.
// The queue position is committed only once the track starts.
func (c *Controller) Next(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.advanceLocked(ctx, c.queue.NextIndex())
}

// Previous starts the entry one before the current one, regardless of mode.
func (c *Controller) Previous(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.advanceLocked(ctx, c.queue.PrevIndex())
}

func (c *Controller) advanceLocked(ctx context.Context, idx int) error {
	if idx < 0 {
		return nil
	}
	id, ok := c.queue.IDAt(idx)
	if !ok {
		return nil
	}
	track, ok := c.tracks.TrackByID(id)
	if !ok {
		return fmt.Errorf("track %q not in catalog", id)
	}
	c.startLocked(ctx, track, idx, true)
	return nil
}

// Seek jumps to an absolute position in the loaded track.
func (c *Controller) Seek(seconds float64) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.state != StatePlaying && c.state != StatePaused {
		return fmt.Errorf("no track loaded")
	}
	if seconds < 0 {
		seconds = 0
	}
	if err := c.transport.Seek(seconds); err != nil {
		return err
	}
	c.elapsed = seconds
	c.lyricIdx = c.doc.ActiveLineIndex(seconds)
	c.notifyLocked()
	return nil
}

// SetVolume clamps the volume to 0-100, applies it to the transport and
// writes it through to the preference store.
func (c *Controller) SetVolume(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if err := c.transport.SetVolume(percent); err != nil {
		return err
	}
	if c.prefs != nil {
		c.prefs.UpdatePreferences(func(p *domain.Preferences) {
			p.Volume = percent
		})
	}
	return nil
}

// SetMode changes the queue's play-mode and writes it through to the
// preference store.
func (c *Controller) SetMode(mode domain.PlayMode) {
	c.queue.SetMode(mode)
	if c.prefs != nil {
		c.prefs.UpdatePreferences(func(p *domain.Preferences) {
			p.PlayMode = mode
		})
	}
}

// RemoveFromQueue drops every occurrence of a track id. Removing the entry
// being played stops the transport and starts the queue's new current
// entry, or ends the session when nothing remains.
func (c *Controller) RemoveFromQueue(ctx context.Context, id string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if !c.queue.Remove(id) {
		return
	}
	if !c.activeLocked() {
		return
	}
	c.restartFromQueueLocked(ctx)
}

// OnLibraryChanged re-anchors the queue against the live catalog. Wire it
// to the library coordinator's change notifications; duplicate calls are
// harmless.
func (c *Controller) OnLibraryChanged(ctx context.Context) {
	live := c.tracks.LiveIDs()
	c.mux.Lock()
	defer c.mux.Unlock()
	c.queue.Reconcile(live)
	if !c.activeLocked() || live[c.track.ID] {
		return
	}
	// The track being played no longer exists.
	c.restartFromQueueLocked(ctx)
}

func (c *Controller) activeLocked() bool {
	return c.state == StateResolving || c.state == StatePlaying || c.state == StatePaused
}

// restartFromQueueLocked stops the transport and starts the queue's current
// entry, or transitions to Stopped when the queue ran empty.
func (c *Controller) restartFromQueueLocked(ctx context.Context) {
	c.generation++
	if err := c.transport.Stop(); err != nil {
		c.logger.Warn("transport stop failed", "error", err)
	}
	id, ok := c.queue.CurrentID()
	if !ok {
		c.stopLocked(nil)
		return
	}
	track, ok := c.tracks.TrackByID(id)
	if !ok {
		c.logger.Warn("queue entry missing from catalog", "track", id)
		c.stopLocked(nil)
		return
	}
	c.startLocked(ctx, track, c.queue.CurrentIndex(), true)
}

// startLocked begins a new resolve-and-start cycle for track. Bumping the
// generation makes any older in-flight cycle drop its result instead of
// overwriting state that belongs to this one.
func (c *Controller) startLocked(ctx context.Context, track domain.Track, queueIndex int, autoPlay bool) {
	c.generation++
	gen := c.generation
	c.state = StateResolving
	c.track = track
	c.uri = ""
	c.elapsed = 0
	c.duration = float64(track.Duration)
	c.lastErr = nil
	c.autoPlay = autoPlay
	c.doc = lyrics.Document{}
	c.lyricIdx = -1
	c.notifyLocked()

	go c.resolveAndStart(ctx, gen, track, queueIndex)
}

func (c *Controller) resolveAndStart(ctx context.Context, gen uint64, track domain.Track, queueIndex int) {
	uri, err := c.resolver.Resolve(track)

	c.mux.Lock()
	defer c.mux.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		c.logger.Error("resolve failed", "track", track.ID, "error", err)
		c.stopLocked(err)
		return
	}
	if err := c.transport.Load(uri, c.autoPlay); err != nil {
		c.logger.Error("transport start failed", "track", track.ID, "error", err)
		c.stopLocked(fmt.Errorf("transport start: %w", err))
		return
	}
	c.uri = uri
	if c.autoPlay {
		c.state = StatePlaying
	} else {
		c.state = StatePaused
	}
	if queueIndex >= 0 {
		if err := c.queue.SetCurrentIndex(queueIndex); err != nil {
			c.logger.Warn("queue position commit failed", "index", queueIndex, "error", err)
		}
	}
	c.notifyLocked()

	go c.fetchLyrics(ctx, gen, track)
}

// fetchLyrics loads the lyric document as a side task. Results for a track
// the session has moved past are dropped, and failures never affect
// playback state.
func (c *Controller) fetchLyrics(ctx context.Context, gen uint64, track domain.Track) {
	if c.lyricSrc == nil {
		return
	}
	if c.prefs != nil && !c.prefs.Preferences().LyricsEnabled {
		return
	}
	doc, err := c.lyricSrc.ForTrack(ctx, track)

	c.mux.Lock()
	defer c.mux.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		if !errors.Is(err, lyrics.ErrNoLyrics) {
			c.logger.Warn("lyric fetch failed", "track", track.ID, "error", err)
		}
		return
	}
	c.doc = doc
	c.lyricIdx = doc.ActiveLineIndex(c.elapsed)
	c.notifyLocked()
}

func (c *Controller) applyTimeUpdate(position, duration float64) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.state != StatePlaying && c.state != StatePaused {
		return
	}
	c.elapsed = position
	if duration > 0 {
		c.duration = duration
	}
	c.lyricIdx = c.doc.ActiveLineIndex(position)
	c.notifyLocked()
}

func (c *Controller) handleTrackEnded(ctx context.Context) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.state != StatePlaying {
		return
	}
	idx := c.queue.NextIndex()
	if idx < 0 {
		c.stopLocked(nil)
		return
	}
	id, ok := c.queue.IDAt(idx)
	if !ok {
		c.stopLocked(nil)
		return
	}
	track, ok := c.tracks.TrackByID(id)
	if !ok {
		c.logger.Warn("queue entry missing from catalog", "track", id)
		c.stopLocked(fmt.Errorf("track %q not in catalog", id))
		return
	}
	c.startLocked(ctx, track, idx, true)
}

func (c *Controller) stopLocked(err error) {
	c.state = StateStopped
	c.lastErr = err
	c.notifyLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		Track:      c.track,
		URI:        c.uri,
		Elapsed:    c.elapsed,
		Duration:   c.duration,
		Err:        c.lastErr,
		Lyrics:     c.doc,
		LyricIndex: c.lyricIdx,
	}
}

func (c *Controller) notifyLocked() {
	snap := c.snapshotLocked()
	for _, fn := range c.listeners {
		fn(snap)
	}
}
