package lyrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceSidecar(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(audio, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	sidecar := filepath.Join(dir, "song.lrc")
	if err := os.WriteFile(sidecar, []byte("[00:01]hello"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	src := NewFileSource()
	text, err := src.FetchLocalLyrics(audio)
	if err != nil {
		t.Fatalf("FetchLocalLyrics: %v", err)
	}
	if text != "[00:01]hello" {
		t.Errorf("Expected sidecar content, got %q", text)
	}
}

func TestFileSourceNoSidecarUnparsableAudio(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(audio, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	src := NewFileSource()
	text, err := src.FetchLocalLyrics(audio)
	if err != nil {
		t.Fatalf("Expected no error for unparsable container, got %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty text, got %q", text)
	}
}

func TestFileSourceMissingAudioFile(t *testing.T) {
	src := NewFileSource()
	if _, err := src.FetchLocalLyrics(filepath.Join(t.TempDir(), "missing.flac")); err == nil {
		t.Errorf("Expected error for missing audio file")
	}
}
