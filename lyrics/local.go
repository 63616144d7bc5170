package lyrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// FileSource reads lyric text for local audio files. A sidecar .lrc file
// next to the audio file wins; otherwise the lyrics embedded in the
// file's tags are used.
type FileSource struct{}

// NewFileSource creates a FileSource.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// FetchLocalLyrics implements LocalSource.
func (s *FileSource) FetchLocalLyrics(path string) (string, error) {
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".lrc"
	data, err := os.ReadFile(sidecar)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read sidecar %s: %w", sidecar, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// An unrecognized container simply has no embedded lyrics.
		return "", nil
	}
	return meta.Lyrics(), nil
}
