package mpvplayer

import (
	"fmt"
	"strconv"

	"github.com/wildeyedskies/go-mpv/mpv"
)

// Handle wraps a libmpv instance with typed accessors for the properties
// and commands the playback session drives.
type Handle struct {
	*mpv.Mpv
}

// Load replaces the current medium with the given URI and starts decoding it.
func (h *Handle) Load(uri string) error {
	return h.Command([]string{"loadfile", uri})
}

// Stop unloads the current medium. The core becomes idle afterwards.
func (h *Handle) Stop() error {
	return h.Command([]string{"stop"})
}

// Loaded reports whether a medium is currently loaded.
func (h *Handle) Loaded() (bool, error) {
	idle, err := h.GetProperty("idle-active", mpv.FORMAT_FLAG)
	if err != nil {
		return false, err
	}
	active, ok := idle.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected idle-active value %v", idle)
	}
	return !active, nil
}

// Paused reports whether playback is paused.
func (h *Handle) Paused() (bool, error) {
	pause, err := h.GetProperty("pause", mpv.FORMAT_FLAG)
	if err != nil {
		return false, err
	}
	paused, ok := pause.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected pause value %v", pause)
	}
	return paused, nil
}

// SetPaused pauses or resumes the loaded medium.
func (h *Handle) SetPaused(paused bool) error {
	return h.SetProperty("pause", mpv.FORMAT_FLAG, paused)
}

// Position returns the playback position in seconds. The property is
// unavailable while no medium is loaded, which surfaces as an error.
func (h *Handle) Position() (float64, error) {
	return h.propertyFloat("time-pos")
}

// Duration returns the loaded medium's duration in seconds. Streams may not
// report one until enough of the file has been read.
func (h *Handle) Duration() (float64, error) {
	return h.propertyFloat("duration")
}

// Volume returns the output volume in percent.
func (h *Handle) Volume() (float64, error) {
	return h.propertyFloat("volume")
}

// SetVolume sets the output volume in percent.
func (h *Handle) SetVolume(percent float64) error {
	return h.SetProperty("volume", mpv.FORMAT_DOUBLE, percent)
}

// Seek jumps to an absolute position in seconds within the loaded medium.
func (h *Handle) Seek(seconds float64) error {
	return h.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

func (h *Handle) propertyFloat(name string) (float64, error) {
	value, err := h.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected %s value %v", name, value)
	}
	return f, nil
}

// CreateMPVInstance creates and initializes a libmpv core configured for
// audio-only playback.
func CreateMPVInstance() (*mpv.Mpv, error) {
	mpvInstance := mpv.Create()

	mpvInstance.SetOptionString("audio-display", "no")
	mpvInstance.SetOptionString("video", "no")

	err := mpvInstance.Initialize()
	if err != nil {
		mpvInstance.TerminateDestroy()
		return nil, err
	}
	return mpvInstance, nil
}
