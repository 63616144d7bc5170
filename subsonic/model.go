package subsonic

import (
	"net/http"
	"time"
)

// Client talks to Subsonic-family servers (Subsonic, OpenSubsonic,
// Navidrome). It holds protocol-level settings only; the server address
// and credentials travel with each call so one client serves every
// configured server.
type Client struct {
	ClientID   string
	APIVersion string
	PageSize   int
	HttpClient *http.Client
}

// Response is the standard subsonic-response envelope. Only the result
// blocks this client reads are mapped.
type Response struct {
	Response struct {
		Status        string `json:"status"`
		Version       string `json:"version"`
		Type          string `json:"type"`
		ServerVersion string `json:"serverVersion"`
		OpenSubsonic  bool   `json:"openSubsonic"`
		Error         struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
		SearchResult3 struct {
			Songs   []Song   `json:"song"`
			Albums  []Album  `json:"album"`
			Artists []Artist `json:"artist"`
		} `json:"searchResult3"`
		AlbumList2 struct {
			Albums []Album `json:"album"`
		} `json:"albumList2"`
		Artists struct {
			Index []ArtistIndex `json:"index"`
		} `json:"artists"`
		LyricsList struct {
			StructuredLyrics []StructuredLyrics `json:"structuredLyrics"`
		} `json:"lyricsList"`
		ScanStatus ScanStatus `json:"scanStatus"`
	} `json:"subsonic-response"`
}

type Song struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Album        string    `json:"album"`
	Artist       string    `json:"artist"`
	Duration     int       `json:"duration"` // in seconds
	Track        int       `json:"track"`
	CoverArt     string    `json:"coverArt"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	Suffix       string    `json:"suffix"`
	BitRate      int       `json:"bitRate"`
	Path         string    `json:"path"`
	PlayCount    int       `json:"playCount"`
	Created      time.Time `json:"created"`
	AlbumID      string    `json:"albumId"`
	ArtistID     string    `json:"artistId"`
	IsVideo      bool      `json:"isVideo"`
	Played       time.Time `json:"played,omitempty"`
	ChannelCount int       `json:"channelCount"`
	SampleRate   int       `json:"samplingRate"`
}

type Album struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	ArtistID  string `json:"artistId"`
	SongCount int    `json:"songCount"`
	Duration  int    `json:"duration"` // in seconds
	Year      int    `json:"year"`
	CoverArt  string `json:"coverArt"`
}

type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumCount int    `json:"albumCount"`
	CoverArt   string `json:"coverArt"`
}

// ArtistIndex is one alphabetical bucket from getArtists.view.
type ArtistIndex struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artist"`
}

// StructuredLyrics is the OpenSubsonic timed-lyrics payload from
// getLyricsBySongId.view.
type StructuredLyrics struct {
	Lang          string      `json:"lang"`
	DisplayArtist string      `json:"displayArtist"`
	DisplayTitle  string      `json:"displayTitle"`
	Offset        int64       `json:"offset"` // in milliseconds
	Synced        bool        `json:"synced"`
	Line          []LyricLine `json:"line"`
}

// LyricLine is one lyric line; Start is nil for unsynced lyrics.
type LyricLine struct {
	Start *int64 `json:"start,omitempty"` // in milliseconds
	Value string `json:"value"`
}

// ScanStatus is the getScanStatus.view result.
type ScanStatus struct {
	Scanning bool  `json:"scanning"`
	Count    int64 `json:"count"`
}
