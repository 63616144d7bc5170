package session

import (
	"context"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/lyrics"
)

// State identifies where the playback session is in its lifecycle.
type State int

const (
	// StateIdle means no track has been selected yet.
	StateIdle State = iota

	// StateResolving means the current track is being turned into a
	// playable URI and handed to the transport.
	StateResolving

	// StatePlaying means the transport is producing audio.
	StatePlaying

	// StatePaused means a track is loaded but suspended.
	StatePaused

	// StateStopped means playback ended, on request or on error.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the session, safe to retain.
// Elapsed and Duration are in seconds. LyricIndex is the active line in
// Lyrics, -1 when no line is active or no lyrics are loaded.
type Snapshot struct {
	State      State
	Track      domain.Track
	URI        string
	Elapsed    float64
	Duration   float64
	Err        error
	Lyrics     lyrics.Document
	LyricIndex int
}

// TrackSource supplies track metadata from the live catalog.
type TrackSource interface {
	// TrackByID returns the track for an id, if the catalog knows it.
	TrackByID(id string) (domain.Track, bool)

	// LiveIDs returns the set of track ids currently in the catalog.
	LiveIDs() map[string]bool
}

// URIResolver turns a track into a playable URI.
type URIResolver interface {
	Resolve(track domain.Track) (string, error)
}

// LyricSource fetches and parses the lyric document for a track.
type LyricSource interface {
	ForTrack(ctx context.Context, track domain.Track) (lyrics.Document, error)
}

// PreferenceStore persists the user preferences the session writes through.
type PreferenceStore interface {
	Preferences() domain.Preferences
	UpdatePreferences(mutate func(*domain.Preferences))
}
