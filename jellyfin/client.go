// Package jellyfin is the streaming client for Jellyfin and Emby servers.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/streaming"
)

// Client talks to Jellyfin-family servers. Authentication rides on the
// configured access token; the server address travels with each call.
type Client struct {
	ClientID   string
	HttpClient *http.Client
}

// NewClient creates a Client with the protocol defaults.
func NewClient(clientID string) *Client {
	return &Client{
		ClientID:   clientID,
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// publicInfo is the System/Info/Public response.
type publicInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// lyricsResponse is the Audio/{id}/Lyrics response. Start is in ticks,
// one tick being 100 nanoseconds.
type lyricsResponse struct {
	Lyrics []lyricLine `json:"Lyrics"`
}

type lyricLine struct {
	Text  string `json:"Text"`
	Start *int64 `json:"Start,omitempty"`
}

const ticksPerMillisecond = 10_000

func baseURL(server *domain.ServerConfig) string {
	return strings.TrimRight(server.BaseURL, "/")
}

// BuildStreamURL returns the direct audio stream URL for an item. The
// token rides in the query string because media elements cannot attach
// headers.
func (c *Client) BuildStreamURL(server *domain.ServerConfig, songID string) (string, error) {
	if server == nil || server.BaseURL == "" {
		return "", fmt.Errorf("server base URL is empty")
	}
	if songID == "" {
		return "", fmt.Errorf("song id is empty")
	}
	if server.Token == "" {
		return "", fmt.Errorf("server %s has no access token", server.ID)
	}
	params := url.Values{}
	params.Add("static", "true")
	params.Add("api_key", server.Token)
	return fmt.Sprintf("%s/Audio/%s/stream?%s", baseURL(server), url.PathEscape(songID), params.Encode()), nil
}

func (c *Client) get(ctx context.Context, server *domain.ServerConfig, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(server)+path, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if server.Token != "" {
		req.Header.Set("X-Emby-Token", server.Token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status: %d, response: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

// TestConnection probes System/Info/Public, which answers without
// credentials on every Jellyfin and Emby release.
func (c *Client) TestConnection(ctx context.Context, server *domain.ServerConfig) (streaming.ConnectionStatus, error) {
	if server == nil || server.BaseURL == "" {
		return streaming.ConnectionStatus{}, fmt.Errorf("server base URL is empty")
	}
	var info publicInfo
	if err := c.get(ctx, server, "/System/Info/Public", &info); err != nil {
		return streaming.ConnectionStatus{}, err
	}
	return streaming.ConnectionStatus{
		Success:       true,
		Message:       info.ServerName,
		ServerVersion: info.Version,
	}, nil
}

// FetchRemoteLyrics loads the item's lyrics and renders timed lines as
// LRC text. Items with only untimed lines yield an empty string.
func (c *Client) FetchRemoteLyrics(ctx context.Context, server *domain.ServerConfig, songID string) (string, error) {
	if server == nil || server.BaseURL == "" {
		return "", fmt.Errorf("server base URL is empty")
	}
	var payload lyricsResponse
	path := fmt.Sprintf("/Audio/%s/Lyrics", url.PathEscape(songID))
	if err := c.get(ctx, server, path, &payload); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, line := range payload.Lyrics {
		if line.Start == nil {
			continue
		}
		ms := *line.Start / ticksPerMillisecond
		if ms < 0 {
			ms = 0
		}
		minutes := ms / 60000
		seconds := (ms % 60000) / 1000
		centis := (ms % 1000) / 10
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", minutes, seconds, centis, line.Text)
	}
	return b.String(), nil
}
