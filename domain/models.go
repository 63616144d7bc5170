package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OriginKind tells where a track's audio comes from.
type OriginKind int

const (
	OriginLocal OriginKind = iota
	OriginRemote
)

func (k OriginKind) String() string {
	switch k {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// LocalOrigin describes a track backed by a file on disk.
type LocalOrigin struct {
	FilePath      string `json:"filePath"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
}

// RemoteOrigin describes a track served by a streaming server. Server is
// the embedded configuration some catalog feeds attach to a track; when
// present it takes precedence over registry lookup by ServerID.
type RemoteOrigin struct {
	ServerID   string        `json:"serverId"`
	SongID     string        `json:"songId"`
	ServerType ServerType    `json:"serverType"`
	Server     *ServerConfig `json:"server,omitempty"`
}

// Track is an immutable catalog entry. Library refreshes replace tracks
// wholesale; nothing mutates a Track after ingestion.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // in seconds
	Kind     OriginKind
	Local    LocalOrigin
	Remote   RemoteOrigin
	HiRes    bool
	Lossless bool
	CoverArt string
}

// EffectiveSongID returns the identifier to use against a remote server.
// Ingestion already copied any embedded payload song id into the remote
// origin, so the fallback chain here is the origin's id, then the track's
// own id.
func (t Track) EffectiveSongID() string {
	if t.Remote.SongID != "" {
		return t.Remote.SongID
	}
	return t.ID
}

// ServerType enumerates the protocol families a streaming server speaks.
type ServerType int

const (
	ServerSubsonic ServerType = iota // Subsonic, OpenSubsonic, Navidrome
	ServerJellyfin                   // Jellyfin, Emby
)

func (t ServerType) String() string {
	switch t {
	case ServerSubsonic:
		return "subsonic"
	case ServerJellyfin:
		return "jellyfin"
	default:
		return "unknown"
	}
}

// ParseServerType maps a configuration string to a ServerType. The aliases
// cover the server families named in stored configs.
func ParseServerType(s string) (ServerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subsonic", "opensubsonic", "navidrome":
		return ServerSubsonic, nil
	case "jellyfin", "emby":
		return ServerJellyfin, nil
	default:
		return ServerSubsonic, fmt.Errorf("unknown server type %q", s)
	}
}

// MarshalJSON encodes the type as its configuration string.
func (t ServerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts any alias ParseServerType accepts.
func (t *ServerType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseServerType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ServerConfig identifies a remote streaming server and how to reach it.
// The server registry owns these; other components only borrow them for
// lookups.
type ServerConfig struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     ServerType `json:"type"`
	BaseURL  string     `json:"baseUrl"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	Token    string     `json:"token"`
	UserID   string     `json:"userId"`
}

// RemotePayload mirrors the loose JSON blob some catalog feeds attach to a
// remote track. It is decoded once at ingestion; resolution reads only the
// typed fields afterwards.
type RemotePayload struct {
	SongID string        `json:"songId"`
	Server *ServerConfig `json:"server"`
}

// ParseRemotePayload decodes an embedded track payload. Unknown fields are
// ignored.
func ParseRemotePayload(raw []byte) (RemotePayload, error) {
	var p RemotePayload
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return RemotePayload{}, fmt.Errorf("decode track payload: %w", err)
	}
	return p, nil
}

// PlayMode governs how the queue selects the next track.
type PlayMode int

const (
	ModeSequence PlayMode = iota
	ModeShuffle
	ModeRepeatOne
)

func (m PlayMode) String() string {
	switch m {
	case ModeSequence:
		return "sequence"
	case ModeShuffle:
		return "shuffle"
	case ModeRepeatOne:
		return "repeat-one"
	default:
		return "unknown"
	}
}

// ParsePlayMode maps a stored mode string back to a PlayMode. Unrecognized
// values fall back to sequence so a stale preference never breaks playback.
func ParsePlayMode(s string) PlayMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shuffle":
		return ModeShuffle
	case "repeat-one", "repeatone", "repeat_one":
		return ModeRepeatOne
	default:
		return ModeSequence
	}
}

// Playlist is a user-created, ordered list of track ids.
type Playlist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	SongIDs []string `json:"songIds"`
}

// AddSong appends a track id, ignoring duplicates. It reports whether the
// playlist changed.
func (p *Playlist) AddSong(id string) bool {
	for _, existing := range p.SongIDs {
		if existing == id {
			return false
		}
	}
	p.SongIDs = append(p.SongIDs, id)
	return true
}

// RemoveSong drops all occurrences of a track id. It reports whether the
// playlist changed.
func (p *Playlist) RemoveSong(id string) bool {
	kept := p.SongIDs[:0]
	removed := false
	for _, existing := range p.SongIDs {
		if existing == id {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	p.SongIDs = kept
	return removed
}

// Album is a catalog album summary.
type Album struct {
	ID        string
	Name      string
	Artist    string
	ArtistID  string
	SongCount int
	Duration  int // in seconds
	Year      int
	CoverArt  string
}

// Artist is a catalog artist summary.
type Artist struct {
	ID         string
	Name       string
	AlbumCount int
	CoverArt   string
}

// LibraryStats are the aggregate counts a catalog snapshot reports.
type LibraryStats struct {
	Songs           int
	Albums          int
	Artists         int
	DurationSeconds int64
}

// Preferences are the user settings persisted across restarts. Fields load
// independently: a malformed stored value for one field falls back to its
// default without touching the others.
type Preferences struct {
	Volume          int
	Language        string
	PlayMode        PlayMode
	CurrentServerID string
	LyricsEnabled   bool
}

// DefaultPreferences returns the preference values used when nothing valid
// has been stored yet.
func DefaultPreferences() Preferences {
	return Preferences{
		Volume:        80,
		Language:      "en",
		PlayMode:      ModeSequence,
		LyricsEnabled: true,
	}
}

// losslessSuffixes are the container formats treated as lossless when
// flagging quality.
var losslessSuffixes = map[string]bool{
	"flac": true,
	"alac": true,
	"ape":  true,
	"wav":  true,
	"aiff": true,
	"aif":  true,
	"dsf":  true,
}

// DetectQuality derives quality flags from a track's container suffix and
// sample rate. Anything above 48 kHz counts as high-resolution.
func DetectQuality(suffix string, sampleRate int) (hiRes, lossless bool) {
	lossless = losslessSuffixes[strings.ToLower(strings.TrimSpace(suffix))]
	hiRes = sampleRate > 48000
	return hiRes, lossless
}

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
