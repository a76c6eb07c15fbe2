package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindAudioFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "01.flac"))
	touch(t, filepath.Join(dir, "disc2", "01.MP3"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, "notes.txt"))

	files, err := FindAudioFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	want := []string{filepath.Join(dir, "01.flac"), filepath.Join(dir, "disc2", "01.MP3")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestFindAudioFilesErrors(t *testing.T) {
	if _, err := FindAudioFiles(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := FindAudioFiles("/nonexistent/dir"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCollectAudioFiles(t *testing.T) {
	dir := t.TempDir()
	album := filepath.Join(dir, "album")
	touch(t, filepath.Join(album, "a.ogg"))
	single := filepath.Join(dir, "single.m4a")
	touch(t, single)

	files, err := CollectAudioFiles([]string{single, album})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0] != single || files[1] != filepath.Join(album, "a.ogg") {
		t.Errorf("files = %v", files)
	}

	if _, err := CollectAudioFiles([]string{filepath.Join(dir, "missing.mp3")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveStream(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "covers", "679234.jpg")

	n, err := SaveStream(dst, func(w io.Writer) error {
		_, err := w.Write([]byte("jpeg-bytes"))
		return err
	})
	if err != nil {
		t.Fatalf("SaveStream() error: %v", err)
	}
	if n != int64(len("jpeg-bytes")) {
		t.Errorf("n = %d", n)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveStreamFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "partial.jpg")
	boom := errors.New("connection reset")

	n, err := SaveStream(dst, func(w io.Writer) error {
		w.Write([]byte("half"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if n != 4 {
		t.Errorf("n = %d, want 4", n)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory should be empty, found %d entries", len(entries))
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"track.flac": true,
		"TRACK.OPUS": true,
		"cover.png":  false,
		"noext":      false,
	}
	for path, want := range tests {
		if got := IsAudioFile(path); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", path, got, want)
		}
	}
}
