package subsonic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/streaming"
)

const (
	defaultAPIVersion = "1.16.1"
	defaultPageSize   = 500
)

// NewClient creates a Client with the protocol defaults.
func NewClient(clientID string) *Client {
	return &Client{
		ClientID:   clientID,
		APIVersion: defaultAPIVersion,
		PageSize:   defaultPageSize,
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func baseURL(server *domain.ServerConfig) string {
	return strings.TrimRight(server.BaseURL, "/")
}

func (c *Client) get(ctx context.Context, server *domain.ServerConfig, endpoint string, extraParams map[string]string) (*Response, error) {
	params := c.buildParams(server, extraParams)
	requestUrl := fmt.Sprintf("%s/rest/%s?%s", baseURL(server), endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status: %d, response: %s", resp.StatusCode, string(body))
	}

	var subsonicResp Response
	if err := json.NewDecoder(resp.Body).Decode(&subsonicResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	if subsonicResp.Response.Status != "ok" {
		return &subsonicResp, fmt.Errorf("subsonic error %d: %s",
			subsonicResp.Response.Error.Code,
			subsonicResp.Response.Error.Message)
	}
	return &subsonicResp, nil
}

// BuildStreamURL returns the stream.view URL for a song. No network I/O;
// the URL carries a fresh salted token.
func (c *Client) BuildStreamURL(server *domain.ServerConfig, songID string) (string, error) {
	if server == nil || server.BaseURL == "" {
		return "", fmt.Errorf("server base URL is empty")
	}
	if songID == "" {
		return "", fmt.Errorf("song id is empty")
	}
	params := c.buildParams(server, map[string]string{
		"id": songID,
	})
	return fmt.Sprintf("%s/rest/stream.view?%s", baseURL(server), params.Encode()), nil
}

// TestConnection probes the server with ping.view.
func (c *Client) TestConnection(ctx context.Context, server *domain.ServerConfig) (streaming.ConnectionStatus, error) {
	resp, err := c.get(ctx, server, "ping.view", nil)
	if err != nil {
		if resp != nil {
			return streaming.ConnectionStatus{
				Success: false,
				Message: resp.Response.Error.Message,
			}, nil
		}
		return streaming.ConnectionStatus{}, err
	}

	version := resp.Response.ServerVersion
	if version == "" {
		version = resp.Response.Version
	}
	return streaming.ConnectionStatus{
		Success:       true,
		Message:       "ok",
		ServerVersion: version,
	}, nil
}

// FetchRemoteLyrics loads timed lyrics via getLyricsBySongId.view and
// renders them as LRC text. Servers without synced lyrics yield an empty
// string.
func (c *Client) FetchRemoteLyrics(ctx context.Context, server *domain.ServerConfig, songID string) (string, error) {
	resp, err := c.get(ctx, server, "getLyricsBySongId.view", map[string]string{
		"id": songID,
	})
	if err != nil {
		return "", err
	}

	for _, structured := range resp.Response.LyricsList.StructuredLyrics {
		if !structured.Synced {
			continue
		}
		if text := lrcFromStructured(structured); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// lrcFromStructured renders OpenSubsonic structured lyrics as LRC lines.
// The document offset shifts every timestamp; lines without a start time
// are skipped.
func lrcFromStructured(structured StructuredLyrics) string {
	var b strings.Builder
	for _, line := range structured.Line {
		if line.Start == nil {
			continue
		}
		ms := *line.Start + structured.Offset
		if ms < 0 {
			ms = 0
		}
		minutes := ms / 60000
		seconds := (ms % 60000) / 1000
		centis := (ms % 1000) / 10
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", minutes, seconds, centis, line.Value)
	}
	return b.String()
}

// ListSongs pages through search3.view with an empty query, which
// Subsonic-family servers treat as "everything".
func (c *Client) ListSongs(ctx context.Context, server *domain.ServerConfig) ([]Song, error) {
	var songs []Song
	for offset := 0; ; offset += c.PageSize {
		resp, err := c.get(ctx, server, "search3.view", map[string]string{
			"query":       "",
			"songCount":   strconv.Itoa(c.PageSize),
			"songOffset":  strconv.Itoa(offset),
			"albumCount":  "0",
			"artistCount": "0",
		})
		if err != nil {
			return nil, err
		}
		page := resp.Response.SearchResult3.Songs
		songs = append(songs, page...)
		if len(page) < c.PageSize {
			return songs, nil
		}
	}
}

// ListAlbums pages through getAlbumList2.view alphabetically.
func (c *Client) ListAlbums(ctx context.Context, server *domain.ServerConfig) ([]Album, error) {
	var albums []Album
	for offset := 0; ; offset += c.PageSize {
		resp, err := c.get(ctx, server, "getAlbumList2.view", map[string]string{
			"type":   "alphabeticalByName",
			"size":   strconv.Itoa(c.PageSize),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}
		page := resp.Response.AlbumList2.Albums
		albums = append(albums, page...)
		if len(page) < c.PageSize {
			return albums, nil
		}
	}
}

// ListArtists flattens the getArtists.view index buckets.
func (c *Client) ListArtists(ctx context.Context, server *domain.ServerConfig) ([]Artist, error) {
	resp, err := c.get(ctx, server, "getArtists.view", nil)
	if err != nil {
		return nil, err
	}
	var artists []Artist
	for _, index := range resp.Response.Artists.Index {
		artists = append(artists, index.Artists...)
	}
	return artists, nil
}

// CoverURL returns the getCoverArt.view URL for a cover id. A sizeHint of
// zero leaves scaling to the server.
func (c *Client) CoverURL(server *domain.ServerConfig, coverID string, sizeHint int) string {
	extra := map[string]string{"id": coverID}
	if sizeHint > 0 {
		extra["size"] = strconv.Itoa(sizeHint)
	}
	params := c.buildParams(server, extra)
	return fmt.Sprintf("%s/rest/getCoverArt.view?%s", baseURL(server), params.Encode())
}

// GetScanStatus reports whether the server is mid-scan and how many
// entries it has seen.
func (c *Client) GetScanStatus(ctx context.Context, server *domain.ServerConfig) (ScanStatus, error) {
	resp, err := c.get(ctx, server, "getScanStatus.view", nil)
	if err != nil {
		return ScanStatus{}, err
	}
	return resp.Response.ScanStatus, nil
}
