// Package resolver turns a track identity into a playable URI. It is
// referentially transparent: same track and registry snapshot, same
// result. Network I/O lives in the streaming collaborator it delegates
// remote URL construction to, never here.
package resolver

import (
	"errors"
	"fmt"

	"github.com/maqibg/BaYin-sub000/domain"
)

var (
	// ErrMissingPath marks a local track without a file path.
	ErrMissingPath = errors.New("local track has no file path")

	// ErrUnknownServer marks a remote track whose server is neither
	// embedded on the track nor present in the registry.
	ErrUnknownServer = errors.New("no server configuration for track")

	// ErrMissingRemoteID marks a remote track with no usable song id.
	ErrMissingRemoteID = errors.New("no remote song id for track")

	// ErrBackendResolution wraps failures from the streaming collaborator.
	ErrBackendResolution = errors.New("backend resolution failed")
)

// ServerRegistry resolves server ids to configurations.
type ServerRegistry interface {
	ServerByID(id string) (*domain.ServerConfig, bool)
}

// StreamURLBuilder builds a playable URL for a remote song. The streaming
// router satisfies it.
type StreamURLBuilder interface {
	BuildStreamURL(server *domain.ServerConfig, songID string) (string, error)
}

// PathConverter turns a local file path into the form the transport
// addresses. The default keeps the path as is, which suits transports
// that open files directly.
type PathConverter func(path string) string

// Resolver resolves tracks against a server registry and the streaming
// collaborator.
type Resolver struct {
	registry ServerRegistry
	streams  StreamURLBuilder
	toPlayer PathConverter
}

// New creates a Resolver. converter may be nil for identity conversion.
func New(registry ServerRegistry, streams StreamURLBuilder, converter PathConverter) *Resolver {
	if converter == nil {
		converter = func(path string) string { return path }
	}
	return &Resolver{
		registry: registry,
		streams:  streams,
		toPlayer: converter,
	}
}

// Resolve produces a playable URI for the track or one of the typed
// failures. It performs no caching.
func (r *Resolver) Resolve(track domain.Track) (string, error) {
	switch track.Kind {
	case domain.OriginLocal:
		return r.resolveLocal(track)
	case domain.OriginRemote:
		return r.resolveRemote(track)
	default:
		return "", fmt.Errorf("%w: origin kind %d", ErrBackendResolution, track.Kind)
	}
}

func (r *Resolver) resolveLocal(track domain.Track) (string, error) {
	if track.Local.FilePath == "" {
		return "", fmt.Errorf("%w: track %s", ErrMissingPath, track.ID)
	}
	return r.toPlayer(track.Local.FilePath), nil
}

func (r *Resolver) resolveRemote(track domain.Track) (string, error) {
	server := track.Remote.Server
	if server == nil && r.registry != nil && track.Remote.ServerID != "" {
		if found, ok := r.registry.ServerByID(track.Remote.ServerID); ok {
			server = found
		}
	}
	if server == nil {
		return "", fmt.Errorf("%w: track %s (server id %q)", ErrUnknownServer, track.ID, track.Remote.ServerID)
	}

	songID := track.EffectiveSongID()
	if songID == "" {
		return "", fmt.Errorf("%w: track with empty id", ErrMissingRemoteID)
	}

	uri, err := r.streams.BuildStreamURL(server, songID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendResolution, err)
	}
	return uri, nil
}
