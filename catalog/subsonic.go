package catalog

import (
	"context"

	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/subsonic"
)

// SubsonicProvider adapts a Subsonic-family server into the Provider
// contract, one provider per configured server.
type SubsonicProvider struct {
	client *subsonic.Client
	server *domain.ServerConfig
}

// NewSubsonicProvider creates a provider bound to one server.
func NewSubsonicProvider(client *subsonic.Client, server *domain.ServerConfig) *SubsonicProvider {
	return &SubsonicProvider{client: client, server: server}
}

// ListSongs implements Provider.
func (p *SubsonicProvider) ListSongs(ctx context.Context) ([]domain.Track, error) {
	songs, err := p.client.ListSongs(ctx, p.server)
	if err != nil {
		return nil, err
	}
	tracks := make([]domain.Track, len(songs))
	for i, song := range songs {
		tracks[i] = p.convertSong(song)
	}
	return tracks, nil
}

func (p *SubsonicProvider) convertSong(song subsonic.Song) domain.Track {
	hiRes, lossless := domain.DetectQuality(song.Suffix, song.SampleRate)
	return domain.Track{
		ID:       song.ID,
		Title:    song.Title,
		Artist:   song.Artist,
		Album:    song.Album,
		Duration: song.Duration,
		Kind:     domain.OriginRemote,
		Remote: domain.RemoteOrigin{
			ServerID:   p.server.ID,
			SongID:     song.ID,
			ServerType: p.server.Type,
		},
		HiRes:    hiRes,
		Lossless: lossless,
		CoverArt: song.CoverArt,
	}
}

// ListAlbums implements Provider.
func (p *SubsonicProvider) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	albums, err := p.client.ListAlbums(ctx, p.server)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Album, len(albums))
	for i, album := range albums {
		out[i] = domain.Album{
			ID:        album.ID,
			Name:      album.Name,
			Artist:    album.Artist,
			ArtistID:  album.ArtistID,
			SongCount: album.SongCount,
			Duration:  album.Duration,
			Year:      album.Year,
			CoverArt:  album.CoverArt,
		}
	}
	return out, nil
}

// ListArtists implements Provider.
func (p *SubsonicProvider) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	artists, err := p.client.ListArtists(ctx, p.server)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Artist, len(artists))
	for i, artist := range artists {
		out[i] = domain.Artist{
			ID:         artist.ID,
			Name:       artist.Name,
			AlbumCount: artist.AlbumCount,
			CoverArt:   artist.CoverArt,
		}
	}
	return out, nil
}

// LibraryStats implements Provider. Subsonic's scan status reports a flat
// entry count; the richer per-kind counts come from the coordinator's own
// snapshot.
func (p *SubsonicProvider) LibraryStats(ctx context.Context) (domain.LibraryStats, error) {
	status, err := p.client.GetScanStatus(ctx, p.server)
	if err != nil {
		return domain.LibraryStats{}, err
	}
	return domain.LibraryStats{Songs: int(status.Count)}, nil
}

// CoverURLs implements Provider. URL building needs no network round
// trip.
func (p *SubsonicProvider) CoverURLs(hashes []string, sizeHint int) map[string]string {
	urls := make(map[string]string, len(hashes))
	for _, hash := range hashes {
		if hash == "" {
			continue
		}
		urls[hash] = p.client.CoverURL(p.server, hash, sizeHint)
	}
	return urls
}
