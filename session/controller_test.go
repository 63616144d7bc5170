package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/lyrics"
	"github.com/maqibg/BaYin-sub000/player"
	"github.com/maqibg/BaYin-sub000/queue"
)

type loadCall struct {
	uri      string
	autoPlay bool
}

type fakeTransport struct {
	mu     sync.Mutex
	events chan player.Event
	loads  []loadCall
	stops  int
	paused []bool
	seeks  []float64
	volume int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan player.Event, 16)}
}

func (f *fakeTransport) Load(uri string, autoPlay bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, loadCall{uri: uri, autoPlay: autoPlay})
	return nil
}

func (f *fakeTransport) SetPaused(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, paused)
	return nil
}

func (f *fakeTransport) Paused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paused) == 0 {
		return false, nil
	}
	return f.paused[len(f.paused)-1], nil
}

func (f *fakeTransport) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeTransport) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeTransport) SetVolume(percent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = percent
	return nil
}

func (f *fakeTransport) Volume() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume, nil
}

func (f *fakeTransport) Events() <-chan player.Event {
	return f.events
}

func (f *fakeTransport) Close() {}

func (f *fakeTransport) loadCalls() []loadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]loadCall, len(f.loads))
	copy(out, f.loads)
	return out
}

func (f *fakeTransport) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fakeTracks struct {
	mu     sync.Mutex
	tracks map[string]domain.Track
}

func newFakeTracks(ids ...string) *fakeTracks {
	f := &fakeTracks{tracks: make(map[string]domain.Track)}
	for _, id := range ids {
		f.tracks[id] = domain.Track{ID: id, Title: "Track " + id, Duration: 100}
	}
	return f
}

func (f *fakeTracks) TrackByID(id string) (domain.Track, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tracks[id]
	return t, ok
}

func (f *fakeTracks) LiveIDs() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := make(map[string]bool, len(f.tracks))
	for id := range f.tracks {
		live[id] = true
	}
	return live
}

func (f *fakeTracks) drop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tracks, id)
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	gates map[string]chan struct{}
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{errs: make(map[string]error), gates: make(map[string]chan struct{})}
}

func (f *fakeResolver) Resolve(track domain.Track) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, track.ID)
	gate := f.gates[track.ID]
	err := f.errs[track.ID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	return "stream://" + track.ID, nil
}

type fakeLyrics struct {
	mu    sync.Mutex
	calls []string
	docs  map[string]lyrics.Document
	errs  map[string]error
	gates map[string]chan struct{}
}

func newFakeLyrics() *fakeLyrics {
	return &fakeLyrics{
		docs:  make(map[string]lyrics.Document),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeLyrics) ForTrack(ctx context.Context, track domain.Track) (lyrics.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, track.ID)
	gate := f.gates[track.ID]
	doc, ok := f.docs[track.ID]
	err := f.errs[track.ID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return lyrics.Document{}, err
	}
	if !ok {
		return lyrics.Document{}, lyrics.ErrNoLyrics
	}
	return doc, nil
}

func (f *fakeLyrics) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePrefs struct {
	mu    sync.Mutex
	prefs domain.Preferences
}

func (f *fakePrefs) Preferences() domain.Preferences {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs
}

func (f *fakePrefs) UpdatePreferences(mutate func(*domain.Preferences)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(&f.prefs)
}

type testRig struct {
	ctrl      *Controller
	queue     *queue.Queue
	tracks    *fakeTracks
	resolver  *fakeResolver
	transport *fakeTransport
	lyricSrc  *fakeLyrics
	prefs     *fakePrefs
}

func newTestRig(t *testing.T, trackIDs ...string) *testRig {
	t.Helper()
	rig := &testRig{
		queue:     queue.New(),
		tracks:    newFakeTracks(trackIDs...),
		resolver:  newFakeResolver(),
		transport: newFakeTransport(),
		lyricSrc:  newFakeLyrics(),
		prefs:     &fakePrefs{prefs: domain.DefaultPreferences()},
	}
	ctrl, err := NewController(Config{
		Queue:     rig.queue,
		Tracks:    rig.tracks,
		Resolver:  rig.resolver,
		Transport: rig.transport,
		Lyrics:    rig.lyricSrc,
		Prefs:     rig.prefs,
		Logger:    log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("Expected controller, got error: %v", err)
	}
	rig.ctrl = ctrl
	return rig
}

func (r *testRig) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.ctrl.Run(ctx)
}

func waitForState(t *testing.T, c *Controller, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := c.Snapshot()
		if snap.State == want {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Expected state %v, got %v", want, c.Snapshot().State)
	return Snapshot{}
}

func waitFor(t *testing.T, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(message)
}

func TestPlayTrackHappyPath(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	snap := waitForState(t, rig.ctrl, StatePlaying)
	if snap.Track.ID != "a" {
		t.Errorf("Expected track a, got %q", snap.Track.ID)
	}
	if snap.URI != "stream://a" {
		t.Errorf("Expected URI stream://a, got %q", snap.URI)
	}
	if snap.Elapsed != 0 {
		t.Errorf("Expected elapsed 0, got %f", snap.Elapsed)
	}
	if snap.Duration != 100 {
		t.Errorf("Expected provisional duration 100, got %f", snap.Duration)
	}
	loads := rig.transport.loadCalls()
	if len(loads) != 1 || loads[0].uri != "stream://a" || !loads[0].autoPlay {
		t.Errorf("Expected one autoplay load of stream://a, got %v", loads)
	}
}

func TestPlayTrackUnknownIDFails(t *testing.T) {
	rig := newTestRig(t, "a")

	err := rig.ctrl.PlayTrack(context.Background(), "ghost")
	if err == nil {
		t.Fatal("Expected error for id absent from catalog")
	}
	if rig.ctrl.Snapshot().State != StateIdle {
		t.Errorf("Expected session to stay idle, got %v", rig.ctrl.Snapshot().State)
	}
}

func TestResolveFailureStopsWithError(t *testing.T) {
	rig := newTestRig(t, "a")
	wantErr := errors.New("server gone")
	rig.resolver.errs["a"] = wantErr

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no synchronous error, got %v", err)
	}

	snap := waitForState(t, rig.ctrl, StateStopped)
	if !errors.Is(snap.Err, wantErr) {
		t.Errorf("Expected stop error %v, got %v", wantErr, snap.Err)
	}
	if len(rig.transport.loadCalls()) != 0 {
		t.Error("Expected no transport load after resolve failure")
	}
}

func TestNewerPlaySupersedesInFlightResolve(t *testing.T) {
	rig := newTestRig(t, "a", "b")
	gate := make(chan struct{})
	rig.resolver.gates["a"] = gate

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := rig.ctrl.Snapshot().State; got != StateResolving {
		t.Fatalf("Expected resolving state, got %v", got)
	}

	if err := rig.ctrl.PlayTrack(context.Background(), "b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	snap := waitForState(t, rig.ctrl, StatePlaying)
	if snap.Track.ID != "b" {
		t.Fatalf("Expected track b, got %q", snap.Track.ID)
	}

	// Let the stale resolution finish; it must not touch the transport or
	// overwrite the session.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	snap = rig.ctrl.Snapshot()
	if snap.Track.ID != "b" || snap.URI != "stream://b" {
		t.Errorf("Expected session to stay on b, got track %q uri %q", snap.Track.ID, snap.URI)
	}
	loads := rig.transport.loadCalls()
	if len(loads) != 1 || loads[0].uri != "stream://b" {
		t.Errorf("Expected only b to reach the transport, got %v", loads)
	}
}

func TestCueTrackLoadsPaused(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.CueTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	waitForState(t, rig.ctrl, StatePaused)
	loads := rig.transport.loadCalls()
	if len(loads) != 1 || loads[0].autoPlay {
		t.Errorf("Expected one paused load, got %v", loads)
	}
}

func TestToggleDuringResolveFlipsTarget(t *testing.T) {
	rig := newTestRig(t, "a")
	gate := make(chan struct{})
	rig.resolver.gates["a"] = gate

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := rig.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	close(gate)

	waitForState(t, rig.ctrl, StatePaused)
	loads := rig.transport.loadCalls()
	if len(loads) != 1 || loads[0].autoPlay {
		t.Errorf("Expected the pending start to load paused, got %v", loads)
	}
}

func TestTogglePlayingAndPaused(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := rig.ctrl.Snapshot().State; got != StatePaused {
		t.Errorf("Expected paused, got %v", got)
	}

	if err := rig.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := rig.ctrl.Snapshot().State; got != StatePlaying {
		t.Errorf("Expected playing, got %v", got)
	}
}

func TestToggleIdleStartsQueueHead(t *testing.T) {
	rig := newTestRig(t, "a", "b")
	rig.queue.SetQueue([]string{"a", "b"}, "")

	if err := rig.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	snap := waitForState(t, rig.ctrl, StatePlaying)
	if snap.Track.ID != "a" {
		t.Errorf("Expected queue head a, got %q", snap.Track.ID)
	}
}

func TestToggleIdleEmptyQueueIsNoOp(t *testing.T) {
	rig := newTestRig(t)

	if err := rig.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := rig.ctrl.Snapshot().State; got != StateIdle {
		t.Errorf("Expected idle, got %v", got)
	}
}

func TestTrackEndAdvancesQueue(t *testing.T) {
	rig := newTestRig(t, "a", "b")
	rig.run(t)

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.transport.events <- player.Event{Kind: player.EventTrackEnded}

	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.State == StatePlaying && snap.Track.ID == "b"
	}, "Expected playback to advance to b")

	if got := rig.queue.CurrentIndex(); got != 1 {
		t.Errorf("Expected queue position 1 after advance, got %d", got)
	}
}

func TestTrackEndRepeatOneReplaysSameTrack(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.queue.SetMode(domain.ModeRepeatOne)
	rig.run(t)

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a"}, ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.transport.events <- player.Event{Kind: player.EventTrackEnded}

	waitFor(t, func() bool {
		return len(rig.transport.loadCalls()) == 2
	}, "Expected the same track to load again")
	loads := rig.transport.loadCalls()
	if loads[1].uri != "stream://a" {
		t.Errorf("Expected replay of a, got %v", loads[1])
	}
}

func TestTrackEndIgnoredWhenNotPlaying(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.run(t)

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)
	if err := rig.ctrl.Stop(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rig.transport.events <- player.Event{Kind: player.EventTrackEnded}
	time.Sleep(20 * time.Millisecond)

	if got := rig.ctrl.Snapshot().State; got != StateStopped {
		t.Errorf("Expected stopped, got %v", got)
	}
	if len(rig.transport.loadCalls()) != 1 {
		t.Error("Expected no new load after stop")
	}
}

func TestTimeUpdatesAdoptTransportValues(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.run(t)

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.transport.events <- player.Event{Kind: player.EventTimeUpdate, Position: 12.5, Duration: 240}

	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.Elapsed == 12.5 && snap.Duration == 240
	}, "Expected elapsed and duration from the transport")
}

func TestTimeUpdateKeepsProvisionalDurationWhenUnknown(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.run(t)

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.transport.events <- player.Event{Kind: player.EventTimeUpdate, Position: 3, Duration: 0}

	waitFor(t, func() bool {
		return rig.ctrl.Snapshot().Elapsed == 3
	}, "Expected elapsed to update")
	if got := rig.ctrl.Snapshot().Duration; got != 100 {
		t.Errorf("Expected declared duration 100 to survive, got %f", got)
	}
}

func TestRemoveCurrentStartsNewHead(t *testing.T) {
	rig := newTestRig(t, "a", "b")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.ctrl.RemoveFromQueue(context.Background(), "a")

	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.State == StatePlaying && snap.Track.ID == "b"
	}, "Expected playback to move to b")
	if rig.transport.stopCount() == 0 {
		t.Error("Expected the transport to stop before restarting")
	}
}

func TestRemoveLastTrackStopsCleanly(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a"}, ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.ctrl.RemoveFromQueue(context.Background(), "a")

	snap := waitForState(t, rig.ctrl, StateStopped)
	if snap.Err != nil {
		t.Errorf("Expected queue-emptied stop without error, got %v", snap.Err)
	}
}

func TestRemoveOtherTrackKeepsPlayback(t *testing.T) {
	rig := newTestRig(t, "a", "b")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.ctrl.RemoveFromQueue(context.Background(), "b")

	snap := rig.ctrl.Snapshot()
	if snap.State != StatePlaying || snap.Track.ID != "a" {
		t.Errorf("Expected a to keep playing, got %v %q", snap.State, snap.Track.ID)
	}
	if rig.transport.stopCount() != 0 {
		t.Error("Expected no transport stop")
	}
}

func TestLibraryChangeRestartsWhenCurrentDropped(t *testing.T) {
	rig := newTestRig(t, "a", "b", "c")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b", "c"}, "b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	rig.tracks.drop("b")
	rig.ctrl.OnLibraryChanged(context.Background())

	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.State == StatePlaying && snap.Track.ID == "a"
	}, "Expected playback to fall back to a")
	if got := rig.queue.Snapshot(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Expected queue [a c], got %v", got)
	}
}

func TestLibraryChangeKeepsSurvivingTrack(t *testing.T) {
	rig := newTestRig(t, "a", "b")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)
	before := len(rig.transport.loadCalls())

	rig.tracks.drop("b")
	rig.ctrl.OnLibraryChanged(context.Background())
	time.Sleep(20 * time.Millisecond)

	snap := rig.ctrl.Snapshot()
	if snap.State != StatePlaying || snap.Track.ID != "a" {
		t.Errorf("Expected a to keep playing, got %v %q", snap.State, snap.Track.ID)
	}
	if got := len(rig.transport.loadCalls()); got != before {
		t.Errorf("Expected no reload, got %d loads", got)
	}
}

func TestNextCommitsQueuePositionAfterStart(t *testing.T) {
	rig := newTestRig(t, "a", "b", "c")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b", "c"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.Next(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitFor(t, func() bool {
		return rig.ctrl.Snapshot().Track.ID == "b" && rig.ctrl.Snapshot().State == StatePlaying
	}, "Expected b to play")
	if got := rig.queue.CurrentIndex(); got != 1 {
		t.Errorf("Expected committed position 1, got %d", got)
	}
}

func TestNextResolveFailureLeavesQueuePosition(t *testing.T) {
	rig := newTestRig(t, "a", "b")
	rig.resolver.errs["b"] = errors.New("token expired")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b"}, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.Next(context.Background()); err != nil {
		t.Fatalf("Expected no synchronous error, got %v", err)
	}
	waitForState(t, rig.ctrl, StateStopped)

	if got := rig.queue.CurrentIndex(); got != 0 {
		t.Errorf("Expected queue position to stay 0 after failed start, got %d", got)
	}
}

func TestPreviousIsPlainRetreat(t *testing.T) {
	rig := newTestRig(t, "a", "b", "c")
	rig.queue.SetMode(domain.ModeShuffle)

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a", "b", "c"}, "b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.Previous(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.State == StatePlaying && snap.Track.ID == "a"
	}, "Expected previous to land on a even in shuffle mode")
}

func TestLyricsLoadForCurrentTrack(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.lyricSrc.docs["a"] = lyrics.Parse("[00:00]Alpha\n[00:10]Beta")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	waitFor(t, func() bool {
		return len(rig.ctrl.Snapshot().Lyrics.Lines) == 2
	}, "Expected lyric document to load")
	if got := rig.ctrl.Snapshot().LyricIndex; got != 0 {
		t.Errorf("Expected active line 0 at elapsed 0, got %d", got)
	}
}

func TestStaleLyricResultIsDropped(t *testing.T) {
	rig := newTestRig(t, "a", "b")
	gate := make(chan struct{})
	rig.lyricSrc.gates["a"] = gate
	rig.lyricSrc.docs["a"] = lyrics.Parse("[00:00]Stale")
	rig.lyricSrc.docs["b"] = lyrics.Parse("[00:00]Fresh")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.PlayTrack(context.Background(), "b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitFor(t, func() bool {
		snap := rig.ctrl.Snapshot()
		return snap.Track.ID == "b" && len(snap.Lyrics.Lines) == 1
	}, "Expected b's lyrics to load")

	close(gate)
	time.Sleep(50 * time.Millisecond)

	snap := rig.ctrl.Snapshot()
	if len(snap.Lyrics.Lines) != 1 || snap.Lyrics.Lines[0].Text != "Fresh" {
		t.Errorf("Expected b's lyrics to survive the stale result, got %v", snap.Lyrics.Lines)
	}
}

func TestLyricFetchSkippedWhenDisabled(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.prefs.UpdatePreferences(func(p *domain.Preferences) {
		p.LyricsEnabled = false
	})

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)
	time.Sleep(20 * time.Millisecond)

	if got := rig.lyricSrc.callCount(); got != 0 {
		t.Errorf("Expected no lyric fetch, got %d", got)
	}
}

func TestLyricFetchFailureLeavesPlaybackAlone(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.lyricSrc.errs["a"] = errors.New("lyrics service down")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)
	time.Sleep(20 * time.Millisecond)

	snap := rig.ctrl.Snapshot()
	if snap.State != StatePlaying || snap.Err != nil {
		t.Errorf("Expected playback untouched by lyric failure, got %v err %v", snap.State, snap.Err)
	}
	if len(snap.Lyrics.Lines) != 0 || snap.LyricIndex != -1 {
		t.Errorf("Expected empty lyric view, got %v idx %d", snap.Lyrics.Lines, snap.LyricIndex)
	}
}

func TestSeekUpdatesElapsedAndLyricIndex(t *testing.T) {
	rig := newTestRig(t, "a")
	rig.lyricSrc.docs["a"] = lyrics.Parse("[00:01.50]Hello\n[00:03]World")

	if err := rig.ctrl.PlayTrack(context.Background(), "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)
	waitFor(t, func() bool {
		return len(rig.ctrl.Snapshot().Lyrics.Lines) == 2
	}, "Expected lyrics to load")

	if err := rig.ctrl.Seek(2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	snap := rig.ctrl.Snapshot()
	if snap.Elapsed != 2 {
		t.Errorf("Expected elapsed 2, got %f", snap.Elapsed)
	}
	if snap.LyricIndex != 0 {
		t.Errorf("Expected active line 0, got %d", snap.LyricIndex)
	}
}

func TestSeekWithoutTrackFails(t *testing.T) {
	rig := newTestRig(t)

	if err := rig.ctrl.Seek(10); err == nil {
		t.Error("Expected error when nothing is loaded")
	}
}

func TestSetVolumeClampsAndPersists(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.SetVolume(150); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got, _ := rig.transport.Volume(); got != 100 {
		t.Errorf("Expected transport volume 100, got %d", got)
	}
	if got := rig.prefs.Preferences().Volume; got != 100 {
		t.Errorf("Expected persisted volume 100, got %d", got)
	}
}

func TestSetModePersists(t *testing.T) {
	rig := newTestRig(t, "a")

	rig.ctrl.SetMode(domain.ModeShuffle)

	if got := rig.queue.Mode(); got != domain.ModeShuffle {
		t.Errorf("Expected queue mode shuffle, got %v", got)
	}
	if got := rig.prefs.Preferences().PlayMode; got != domain.ModeShuffle {
		t.Errorf("Expected persisted mode shuffle, got %v", got)
	}
}

func TestPlayQueueEmptyStops(t *testing.T) {
	rig := newTestRig(t, "a")

	if err := rig.ctrl.PlayQueue(context.Background(), []string{"a"}, ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitForState(t, rig.ctrl, StatePlaying)

	if err := rig.ctrl.PlayQueue(context.Background(), nil, ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	snap := waitForState(t, rig.ctrl, StateStopped)
	if snap.Err != nil {
		t.Errorf("Expected clean stop, got %v", snap.Err)
	}
}
