// Package device watches the system's default audio output and reports when
// an external device goes away, so playback can pause instead of continuing
// through the built-in speakers.
package device

import (
	"context"
	"encoding/json"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Kind classifies an audio output device.
type Kind int

const (
	KindUnknown Kind = iota
	KindBuiltIn
	KindBluetooth
	KindUSB
	KindHDMI
	KindHeadphones
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindBuiltIn:
		return "built-in"
	case KindBluetooth:
		return "bluetooth"
	case KindUSB:
		return "usb"
	case KindHDMI:
		return "hdmi"
	case KindHeadphones:
		return "headphones"
	default:
		return "unknown"
	}
}

// External reports whether devices of this kind can disappear at runtime.
func (k Kind) External() bool {
	switch k {
	case KindBluetooth, KindUSB, KindHDMI, KindHeadphones:
		return true
	default:
		return false
	}
}

// Output describes one audio output device as the system reports it.
type Output struct {
	Name          string
	Kind          Kind
	Transport     string
	DefaultOutput bool
}

// Monitor polls the default audio output and fires a callback when an
// external device disconnects. Only macOS exposes the device inventory the
// monitor reads; elsewhere it stays disabled.
type Monitor struct {
	interval     time.Duration
	onDisconnect func()
	logger       *log.Logger
	supported    bool

	hasLast     bool
	last        Output
	wasExternal bool
}

// NewMonitor creates a Monitor that invokes onDisconnect when the external
// output being used goes away.
func NewMonitor(onDisconnect func(), logger *log.Logger) *Monitor {
	return &Monitor{
		interval:     500 * time.Millisecond,
		onDisconnect: onDisconnect,
		logger:       logger,
		supported:    runtime.GOOS == "darwin",
	}
}

// Start begins polling until the context is canceled. On unsupported
// platforms it logs once and returns.
func (m *Monitor) Start(ctx context.Context) {
	if !m.supported {
		m.logger.Info("audio device monitor disabled", "os", runtime.GOOS)
		return
	}
	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.observe(m.readOutputs())

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("audio device monitor stopped")
			return
		case <-ticker.C:
			outputs := m.readOutputs()
			if m.evaluate(outputs) {
				if m.onDisconnect != nil {
					m.onDisconnect()
				}
			}
		}
	}
}

// evaluate folds a fresh device inventory into the monitor state and reports
// whether the external output in use disconnected since the last poll.
func (m *Monitor) evaluate(outputs []Output) bool {
	current := defaultOutput(outputs)
	if current == nil {
		return false
	}

	fire := false
	if m.hasLast && m.wasExternal {
		switch {
		case !current.Kind.External():
			fire = true
		case !sameDevice(current.Name, m.last.Name) && !present(outputs, m.last.Name):
			fire = true
		}
		if fire {
			m.logger.Info("audio output disconnected", "from", m.last.Name, "to", current.Name)
		}
	}

	m.last = *current
	m.hasLast = true
	m.wasExternal = current.Kind.External()
	return fire
}

func (m *Monitor) observe(outputs []Output) {
	current := defaultOutput(outputs)
	if current == nil {
		return
	}
	m.last = *current
	m.hasLast = true
	m.wasExternal = current.Kind.External()
	m.logger.Debug("audio output", "device", current.Name, "kind", current.Kind)
}

func (m *Monitor) readOutputs() []Output {
	cmd := exec.Command("system_profiler", "SPAudioDataType", "-json")
	raw, err := cmd.Output()
	if err != nil {
		m.logger.Debug("audio device inventory unavailable", "error", err)
		return nil
	}
	outputs, err := parseOutputs(raw)
	if err != nil {
		m.logger.Debug("audio device inventory unreadable", "error", err)
		return nil
	}
	return outputs
}

// defaultOutput picks the device the system routes playback to, preferring
// an explicitly flagged default and falling back to the first entry.
func defaultOutput(outputs []Output) *Output {
	var fallback *Output
	for i := range outputs {
		out := &outputs[i]
		if out.DefaultOutput {
			return out
		}
		if fallback == nil {
			fallback = out
		}
	}
	return fallback
}

func present(outputs []Output, name string) bool {
	for _, out := range outputs {
		if sameDevice(out.Name, name) {
			return true
		}
	}
	return false
}

func sameDevice(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// parseOutputs reads the system_profiler SPAudioDataType JSON report. The
// report nests devices under _items; key names vary across macOS releases,
// so values are probed rather than decoded into a fixed schema.
func parseOutputs(raw []byte) ([]Output, error) {
	var root struct {
		Entries []struct {
			Items []map[string]interface{} `json:"_items"`
		} `json:"SPAudioDataType"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0)
	for _, entry := range root.Entries {
		for _, item := range entry.Items {
			name := stringValue(item, "_name")
			if name == "" {
				continue
			}
			transport := stringValue(item,
				"coreaudio_device_transport",
				"coreaudio_device_interface",
			)
			isDefault := truthyValue(item,
				"coreaudio_default_audio_output_device",
				"coreaudio_device_is_default_output",
			)
			outputs = append(outputs, Output{
				Name:          name,
				Kind:          detectKind(name, transport),
				Transport:     transport,
				DefaultOutput: isDefault,
			})
		}
	}
	return outputs, nil
}

func stringValue(item map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := item[key].(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				return s
			}
		}
	}
	return ""
}

func truthyValue(item map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		switch v := item[key].(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "yes", "true", "1", "spaudio_yes":
				return true
			case "no", "false", "0", "spaudio_no":
				return false
			}
		case float64:
			return v != 0
		}
	}
	return false
}

// detectKind classifies a device from its transport, falling back to name
// heuristics when the transport field is absent.
func detectKind(name, transport string) Kind {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "bluetooth", "wireless", "ble":
		return KindBluetooth
	case "usb", "usb audio", "usbaudio":
		return KindUSB
	case "hdmi", "displayport", "thunderbolt":
		return KindHDMI
	case "built-in", "internal":
		return KindBuiltIn
	case "headphone", "headset", "line out", "analog":
		return KindHeadphones
	}

	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "bluetooth", "airpods", "beats", "bose", "sony wh", "sony wf", "jabra", "jbl"):
		return KindBluetooth
	case containsAny(lower, "built-in", "internal", "macbook", "imac", "mac mini", "speakers"):
		return KindBuiltIn
	case containsAny(lower, "usb", "dac", "audio interface"):
		return KindUSB
	case containsAny(lower, "hdmi", "displayport", "display audio"):
		return KindHDMI
	case containsAny(lower, "headphone", "headset"):
		return KindHeadphones
	default:
		return KindUnknown
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
