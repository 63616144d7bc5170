// Package catalog holds the in-memory library view and the coordinator
// that keeps it in sync with a catalog provider.
package catalog

import (
	"sync"

	"github.com/maqibg/BaYin-sub000/domain"
)

// Catalog is the live library snapshot consumed by the queue and the
// resolver. Refreshes replace the content wholesale; readers always see
// one consistent generation.
type Catalog struct {
	mux     sync.RWMutex
	tracks  map[string]domain.Track
	order   []string
	albums  []domain.Album
	artists []domain.Artist
	covers  map[string]string
	stats   domain.LibraryStats
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tracks: make(map[string]domain.Track)}
}

// Replace swaps in a new snapshot and recomputes the aggregate stats.
// covers maps cover art references to display URLs; nil is fine.
func (c *Catalog) Replace(tracks []domain.Track, albums []domain.Album, artists []domain.Artist, covers map[string]string) {
	byID := make(map[string]domain.Track, len(tracks))
	order := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if _, seen := byID[t.ID]; !seen {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}
	var duration int64
	for _, t := range byID {
		duration += int64(t.Duration)
	}
	coverCopy := make(map[string]string, len(covers))
	for ref, url := range covers {
		coverCopy[ref] = url
	}

	c.mux.Lock()
	defer c.mux.Unlock()
	c.tracks = byID
	c.order = order
	c.albums = append([]domain.Album(nil), albums...)
	c.artists = append([]domain.Artist(nil), artists...)
	c.covers = coverCopy
	c.stats = domain.LibraryStats{
		Songs:           len(order),
		Albums:          len(albums),
		Artists:         len(artists),
		DurationSeconds: duration,
	}
}

// TrackByID returns one track from the current snapshot.
func (c *Catalog) TrackByID(id string) (domain.Track, bool) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	t, ok := c.tracks[id]
	return t, ok
}

// Tracks returns the snapshot's tracks in stable ingestion order.
func (c *Catalog) Tracks() []domain.Track {
	c.mux.RLock()
	defer c.mux.RUnlock()
	out := make([]domain.Track, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tracks[id])
	}
	return out
}

// LiveIDs returns the set of track ids in the current snapshot, the shape
// queue reconciliation consumes.
func (c *Catalog) LiveIDs() map[string]bool {
	c.mux.RLock()
	defer c.mux.RUnlock()
	live := make(map[string]bool, len(c.tracks))
	for id := range c.tracks {
		live[id] = true
	}
	return live
}

// CoverURL returns the display URL for a cover art reference, as carried
// by Track.CoverArt and Album.CoverArt.
func (c *Catalog) CoverURL(ref string) (string, bool) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	url, ok := c.covers[ref]
	return url, ok
}

// Albums returns the snapshot's albums.
func (c *Catalog) Albums() []domain.Album {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return append([]domain.Album(nil), c.albums...)
}

// Artists returns the snapshot's artists.
func (c *Catalog) Artists() []domain.Artist {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return append([]domain.Artist(nil), c.artists...)
}

// Stats returns the aggregate counts of the current snapshot.
func (c *Catalog) Stats() domain.LibraryStats {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.stats
}
