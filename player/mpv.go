package player

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/maqibg/BaYin-sub000/mpvplayer"
	"github.com/wildeyedskies/go-mpv/mpv"
)

// progressInterval is how often the transport samples playback position.
const progressInterval = 500 * time.Millisecond

// MPVTransport implements the Transport interface using the MPV media player.
type MPVTransport struct {
	handle *mpvplayer.Handle
	events chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMPVTransport creates an MPV instance and starts the goroutines that
// translate its event stream into transport notifications.
func NewMPVTransport(ctx context.Context) (*MPVTransport, error) {
	instance, err := mpvplayer.CreateMPVInstance()
	if err != nil {
		return nil, fmt.Errorf("failed to create MPV instance: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &MPVTransport{
		handle: &mpvplayer.Handle{Mpv: instance},
		events: make(chan Event),
		cancel: cancel,
	}

	t.wg.Add(2)
	go t.watchEvents(ctx)
	go t.pollProgress(ctx)
	go func() {
		t.wg.Wait()
		close(t.events)
	}()

	return t, nil
}

// Load replaces the current medium. The pause flag is set before the load so
// a medium loaded with autoPlay false never produces sound.
func (t *MPVTransport) Load(uri string, autoPlay bool) error {
	if err := t.ready(); err != nil {
		return err
	}
	if err := t.handle.SetPaused(!autoPlay); err != nil {
		return err
	}
	return t.handle.Load(uri)
}

// SetPaused pauses or resumes the loaded medium.
func (t *MPVTransport) SetPaused(paused bool) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.handle.SetPaused(paused)
}

// Paused returns whether playback is currently paused.
func (t *MPVTransport) Paused() (bool, error) {
	if err := t.ready(); err != nil {
		return false, err
	}
	return t.handle.Paused()
}

// Stop unloads the current medium.
func (t *MPVTransport) Stop() error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.handle.Stop()
}

// Seek jumps to an absolute position in seconds.
func (t *MPVTransport) Seek(seconds float64) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.handle.Seek(seconds)
}

// SetVolume sets the output volume in percent.
func (t *MPVTransport) SetVolume(percent int) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.handle.SetVolume(float64(percent))
}

// Volume returns the output volume in percent.
func (t *MPVTransport) Volume() (int, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	v, err := t.handle.Volume()
	if err != nil {
		return 0, err
	}
	return int(math.Round(v)), nil
}

// Events returns the transport notification channel.
func (t *MPVTransport) Events() <-chan Event {
	return t.events
}

// Close stops the event goroutines and tears down the MPV instance.
func (t *MPVTransport) Close() {
	if t.handle == nil || t.handle.Mpv == nil {
		return
	}
	t.cancel()
	t.handle.Command([]string{"quit"})
	t.wg.Wait()
	t.handle.TerminateDestroy()
}

func (t *MPVTransport) ready() error {
	if t.handle == nil || t.handle.Mpv == nil {
		return fmt.Errorf("MPV instance not initialized")
	}
	return nil
}

// watchEvents drains the MPV event queue. A loadfile replacement also raises
// an end event for the medium it displaces; only an end that leaves the core
// idle counts as the track finishing.
func (t *MPVTransport) watchEvents(ctx context.Context) {
	defer t.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
			e := t.handle.WaitEvent(1)
			if e == nil {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			if e.Event_Id != mpv.EVENT_END_FILE {
				continue
			}
			loaded, err := t.handle.Loaded()
			if err != nil || loaded {
				continue
			}
			t.emit(ctx, Event{Kind: EventTrackEnded})
		}
	}
}

// pollProgress samples position and duration while a medium is loaded.
func (t *MPVTransport) pollProgress(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loaded, err := t.handle.Loaded()
			if err != nil || !loaded {
				continue
			}
			pos, err := t.handle.Position()
			if err != nil {
				continue
			}
			// Streams may not report a duration right away.
			dur, err := t.handle.Duration()
			if err != nil {
				dur = 0
			}
			t.emit(ctx, Event{Kind: EventTimeUpdate, Position: pos, Duration: dur})
		}
	}
}

func (t *MPVTransport) emit(ctx context.Context, ev Event) {
	select {
	case t.events <- ev:
	case <-ctx.Done():
	}
}
