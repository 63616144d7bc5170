package player

// EventKind identifies the class of a transport notification.
type EventKind int

const (
	// EventTimeUpdate reports playback progress for the loaded medium.
	EventTimeUpdate EventKind = iota

	// EventTrackEnded reports that the loaded medium played to its end.
	EventTrackEnded
)

// Event is a single asynchronous notification from the transport.
// Position and Duration are in seconds and only meaningful for
// EventTimeUpdate.
type Event struct {
	Kind     EventKind
	Position float64
	Duration float64
}

// Transport defines the interface for the media element the session drives.
// This abstraction keeps the session logic independent of the actual backend
// (MPV here, anything that can open a URI in principle).
type Transport interface {
	// Load replaces the current medium with the given URI. With autoPlay
	// false the medium is loaded paused.
	Load(uri string, autoPlay bool) error

	// SetPaused pauses or resumes the loaded medium.
	SetPaused(paused bool) error

	// Paused returns whether playback is currently paused.
	Paused() (bool, error)

	// Stop unloads the current medium.
	Stop() error

	// Seek jumps to an absolute position in seconds.
	Seek(seconds float64) error

	// SetVolume sets the output volume in percent (0-100).
	SetVolume(percent int) error

	// Volume returns the output volume in percent.
	Volume() (int, error)

	// Events returns the channel transport notifications arrive on.
	// The channel is closed when the transport shuts down.
	Events() <-chan Event

	// Close stops playback and releases the backend.
	Close()
}
