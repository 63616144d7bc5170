// Package store persists user preferences and playlists through a durable
// blob collaborator. Loading is tolerant: malformed stored data falls back
// to defaults field by field and never crashes startup.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/maqibg/BaYin-sub000/domain"
)

const (
	prefsKey     = "preferences"
	playlistsKey = "playlists"
)

var (
	// ErrPlaylistNotFound marks operations against an unknown playlist id.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrEmptyName rejects playlist names that are empty after trimming.
	ErrEmptyName = errors.New("playlist name is empty")
)

// Store holds the in-memory view of preferences and playlists and writes
// every observed mutation through to the blob collaborator.
type Store struct {
	blobs  Blobs
	logger *log.Logger
	newID  func() string

	mu        sync.RWMutex
	prefs     domain.Preferences
	playlists []domain.Playlist

	writersMu sync.Mutex
	writers   map[string]*keyWriter
	flushers  sync.WaitGroup
}

// Open loads stored state through the collaborator. Read errors and
// malformed blobs degrade to defaults; they are logged, never returned.
func Open(blobs Blobs, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	s := &Store{
		blobs:   blobs,
		logger:  logger,
		newID:   func() string { return uuid.New().String() },
		writers: make(map[string]*keyWriter),
	}
	s.prefs = s.loadPreferences()
	s.playlists = s.loadPlaylists()
	return s
}

// Close waits for queued writes to land, then releases the blob
// collaborator when it holds closable resources. The store owns the
// collaborator from Open on.
func (s *Store) Close() {
	s.flushers.Wait()
	if closer, ok := s.blobs.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("closing blob store", "error", err)
		}
	}
}

// Preferences returns the current preferences (thread-safe).
func (s *Store) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// UpdatePreferences applies a mutation and persists the result.
func (s *Store) UpdatePreferences(mutate func(*domain.Preferences)) {
	s.mu.Lock()
	mutate(&s.prefs)
	snapshot := s.prefs
	s.mu.Unlock()

	s.enqueue(prefsKey, encodePreferences(snapshot))
}

// Playlists returns a copy of all playlists in creation order.
func (s *Store) Playlists() []domain.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = copyPlaylist(p)
	}
	return out
}

// PlaylistByID returns one playlist.
func (s *Store) PlaylistByID(id string) (domain.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.playlists {
		if p.ID == id {
			return copyPlaylist(p), true
		}
	}
	return domain.Playlist{}, false
}

// CreatePlaylist adds a playlist with a fresh id.
func (s *Store) CreatePlaylist(name string) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, ErrEmptyName
	}

	playlist := domain.Playlist{ID: s.newID(), Name: name}
	s.mu.Lock()
	s.playlists = append(s.playlists, playlist)
	blob := encodePlaylists(s.playlists)
	s.mu.Unlock()

	s.enqueue(playlistsKey, blob)
	return copyPlaylist(playlist), nil
}

// RenamePlaylist renames a playlist in place.
func (s *Store) RenamePlaylist(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.mutatePlaylist(id, func(p *domain.Playlist) bool {
		if p.Name == name {
			return false
		}
		p.Name = name
		return true
	})
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(id string) error {
	s.mu.Lock()
	idx := -1
	for i, p := range s.playlists {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	s.playlists = append(s.playlists[:idx], s.playlists[idx+1:]...)
	blob := encodePlaylists(s.playlists)
	s.mu.Unlock()

	s.enqueue(playlistsKey, blob)
	return nil
}

// AddToPlaylist appends a track id; duplicates are ignored without error.
func (s *Store) AddToPlaylist(id, songID string) error {
	return s.mutatePlaylist(id, func(p *domain.Playlist) bool {
		return p.AddSong(songID)
	})
}

// RemoveFromPlaylist drops a track id from a playlist.
func (s *Store) RemoveFromPlaylist(id, songID string) error {
	return s.mutatePlaylist(id, func(p *domain.Playlist) bool {
		return p.RemoveSong(songID)
	})
}

// mutatePlaylist runs a mutation against one playlist and persists when
// the mutation reports a change.
func (s *Store) mutatePlaylist(id string, mutate func(*domain.Playlist) bool) error {
	s.mu.Lock()
	var target *domain.Playlist
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			target = &s.playlists[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	changed := mutate(target)
	var blob string
	if changed {
		blob = encodePlaylists(s.playlists)
	}
	s.mu.Unlock()

	if changed {
		s.enqueue(playlistsKey, blob)
	}
	return nil
}

func copyPlaylist(p domain.Playlist) domain.Playlist {
	p.SongIDs = append([]string(nil), p.SongIDs...)
	return p
}

// storedPreferences is the persisted preference shape.
type storedPreferences struct {
	Volume          int    `json:"volume"`
	Language        string `json:"language"`
	PlayMode        string `json:"playMode"`
	CurrentServerID string `json:"currentServerId"`
	LyricsEnabled   bool   `json:"lyricsEnabled"`
}

func encodePreferences(p domain.Preferences) string {
	data, err := json.Marshal(storedPreferences{
		Volume:          p.Volume,
		Language:        p.Language,
		PlayMode:        p.PlayMode.String(),
		CurrentServerID: p.CurrentServerID,
		LyricsEnabled:   p.LyricsEnabled,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}

// loadPreferences restores preferences field by field. A field whose
// stored value fails to decode or validate keeps its default; valid
// sibling fields from the same blob survive.
func (s *Store) loadPreferences() domain.Preferences {
	prefs := domain.DefaultPreferences()

	blob, found, err := s.blobs.Get(prefsKey)
	if err != nil {
		s.logger.Warn("preference load skipped", "error", err)
		return prefs
	}
	if !found || strings.TrimSpace(blob) == "" {
		return prefs
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &fields); err != nil {
		s.logger.Warn("stored preferences unreadable, using defaults", "error", err)
		return prefs
	}

	if raw, ok := fields["volume"]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err == nil && v >= 0 && v <= 100 {
			prefs.Volume = v
		}
	}
	if raw, ok := fields["language"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil && strings.TrimSpace(v) != "" {
			prefs.Language = v
		}
	}
	if raw, ok := fields["playMode"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil {
			prefs.PlayMode = domain.ParsePlayMode(v)
		}
	}
	if raw, ok := fields["currentServerId"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil {
			prefs.CurrentServerID = v
		}
	}
	if raw, ok := fields["lyricsEnabled"]; ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err == nil {
			prefs.LyricsEnabled = v
		}
	}
	return prefs
}

// storedPlaylist is the persisted playlist shape. Unknown stored fields
// are ignored on load and never written back.
type storedPlaylist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	SongIDs []string `json:"songIds"`
}

func encodePlaylists(playlists []domain.Playlist) string {
	stored := make([]storedPlaylist, len(playlists))
	for i, p := range playlists {
		stored[i] = storedPlaylist{ID: p.ID, Name: p.Name, SongIDs: p.SongIDs}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// loadPlaylists restores playlists entry by entry, dropping entries that
// do not decode or carry no id.
func (s *Store) loadPlaylists() []domain.Playlist {
	blob, found, err := s.blobs.Get(playlistsKey)
	if err != nil {
		s.logger.Warn("playlist load skipped", "error", err)
		return nil
	}
	if !found || strings.TrimSpace(blob) == "" {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		s.logger.Warn("stored playlists unreadable, starting empty", "error", err)
		return nil
	}

	playlists := make([]domain.Playlist, 0, len(entries))
	for _, entry := range entries {
		var p storedPlaylist
		if err := json.Unmarshal(entry, &p); err != nil {
			s.logger.Warn("skipping unreadable playlist entry", "error", err)
			continue
		}
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, domain.Playlist{
			ID:      p.ID,
			Name:    p.Name,
			SongIDs: p.SongIDs,
		})
	}
	return playlists
}
