// Package streaming defines the protocol collaborator the playback core
// talks to. Each server family ships its own Client; the Router picks the
// right one from a server's configured type.
package streaming

import (
	"context"
	"fmt"

	"github.com/maqibg/BaYin-sub000/domain"
)

// ConnectionStatus reports the outcome of a connectivity probe.
type ConnectionStatus struct {
	Success       bool
	Message       string
	ServerVersion string
}

// Client is implemented once per streaming protocol family. URL building
// performs no network I/O; the probe and lyric fetch do.
type Client interface {
	// BuildStreamURL returns a playable URL for a remote song.
	BuildStreamURL(server *domain.ServerConfig, songID string) (string, error)

	// FetchRemoteLyrics returns raw lyric text for a remote song, or an
	// empty string when the server has none.
	FetchRemoteLyrics(ctx context.Context, server *domain.ServerConfig, songID string) (string, error)

	// TestConnection probes the server with the configured credentials.
	TestConnection(ctx context.Context, server *domain.ServerConfig) (ConnectionStatus, error)
}

// Router dispatches client calls by server type. It satisfies Client so
// callers can stay ignorant of how many protocol families are wired in.
type Router struct {
	clients map[domain.ServerType]Client
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{clients: make(map[domain.ServerType]Client)}
}

// Register wires a client for a server type, replacing any previous one.
func (r *Router) Register(serverType domain.ServerType, client Client) {
	r.clients[serverType] = client
}

func (r *Router) client(server *domain.ServerConfig) (Client, error) {
	if server == nil {
		return nil, fmt.Errorf("nil server configuration")
	}
	c, ok := r.clients[server.Type]
	if !ok {
		return nil, fmt.Errorf("no client registered for server type %s", server.Type)
	}
	return c, nil
}

// BuildStreamURL implements Client by dispatch.
func (r *Router) BuildStreamURL(server *domain.ServerConfig, songID string) (string, error) {
	c, err := r.client(server)
	if err != nil {
		return "", err
	}
	return c.BuildStreamURL(server, songID)
}

// FetchRemoteLyrics implements Client by dispatch.
func (r *Router) FetchRemoteLyrics(ctx context.Context, server *domain.ServerConfig, songID string) (string, error) {
	c, err := r.client(server)
	if err != nil {
		return "", err
	}
	return c.FetchRemoteLyrics(ctx, server, songID)
}

// TestConnection implements Client by dispatch.
func (r *Router) TestConnection(ctx context.Context, server *domain.ServerConfig) (ConnectionStatus, error) {
	c, err := r.client(server)
	if err != nil {
		return ConnectionStatus{}, err
	}
	return c.TestConnection(ctx, server)
}
