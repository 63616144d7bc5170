package lyrics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maqibg/BaYin-sub000/domain"
)

// ErrNoLyrics marks the "no lyrics available" condition. It is not a
// fetch failure; callers show different messaging for the two cases.
var ErrNoLyrics = errors.New("no lyrics available")

// RemoteSource fetches raw lyric text from a streaming server.
type RemoteSource interface {
	FetchRemoteLyrics(ctx context.Context, server *domain.ServerConfig, songID string) (string, error)
}

// LocalSource fetches raw lyric text for an audio file on disk.
type LocalSource interface {
	FetchLocalLyrics(path string) (string, error)
}

// ServerLookup resolves a server id to its configuration.
type ServerLookup interface {
	ServerByID(id string) (*domain.ServerConfig, bool)
}

// Fetcher turns a track into a parsed lyric document by delegating the
// raw-text lookup to the origin-appropriate source.
type Fetcher struct {
	remote  RemoteSource
	local   LocalSource
	servers ServerLookup
}

// NewFetcher creates a Fetcher. Any collaborator may be nil; tracks whose
// origin needs a missing collaborator report ErrNoLyrics.
func NewFetcher(remote RemoteSource, local LocalSource, servers ServerLookup) *Fetcher {
	return &Fetcher{remote: remote, local: local, servers: servers}
}

// ForTrack fetches and parses lyrics for a track. Whitespace-only source
// text maps to ErrNoLyrics; source failures are wrapped and returned as
// errors distinct from that condition.
func (f *Fetcher) ForTrack(ctx context.Context, track domain.Track) (Document, error) {
	raw, err := f.rawText(ctx, track)
	if err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Document{}, ErrNoLyrics
	}
	doc := Parse(raw)
	if doc.Empty() {
		return Document{}, ErrNoLyrics
	}
	return doc, nil
}

func (f *Fetcher) rawText(ctx context.Context, track domain.Track) (string, error) {
	switch track.Kind {
	case domain.OriginLocal:
		if f.local == nil || track.Local.FilePath == "" {
			return "", ErrNoLyrics
		}
		text, err := f.local.FetchLocalLyrics(track.Local.FilePath)
		if err != nil {
			return "", fmt.Errorf("fetch local lyrics: %w", err)
		}
		return text, nil
	case domain.OriginRemote:
		if f.remote == nil {
			return "", ErrNoLyrics
		}
		server := track.Remote.Server
		if server == nil && f.servers != nil {
			if found, ok := f.servers.ServerByID(track.Remote.ServerID); ok {
				server = found
			}
		}
		if server == nil {
			return "", ErrNoLyrics
		}
		songID := track.EffectiveSongID()
		if songID == "" {
			return "", ErrNoLyrics
		}
		text, err := f.remote.FetchRemoteLyrics(ctx, server, songID)
		if err != nil {
			return "", fmt.Errorf("fetch remote lyrics: %w", err)
		}
		return text, nil
	default:
		return "", ErrNoLyrics
	}
}
