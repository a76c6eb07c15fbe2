package metadata

import (
	"os/exec"
	"path/filepath"
	"testing"

	"discogs/internal/provider/discogs"

	"go.senan.xyz/taglib"
)

// createTestAudioFile generates a minimal MP3 using ffmpeg.
// Skips the test if ffmpeg is not available.
func createTestAudioFile(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping tagger test")
	}

	path := filepath.Join(dir, "test.mp3")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono", "-t", "0.1", "-q:a", "9", path)
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// Minimal valid JPEG (smallest valid JFIF)
var fakeImage = []byte{
	0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xFF, 0xD9,
}

var psychose = discogs.Release{
	ID:      679234,
	Title:   "Benighted - Psychose",
	Year:    "2002",
	Genre:   []string{"Rock"},
	Label:   []string{"Adipocere Records"},
	CatNo:   "CDAR054",
	Barcode: []string{"3700132600549"},
	Country: "France",
}

func TestTagsFromRelease(t *testing.T) {
	tags := TagsFromRelease(psychose)

	checks := map[string]string{
		taglib.Album:       "Psychose",
		taglib.Artist:      "Benighted",
		taglib.AlbumArtist: "Benighted",
		taglib.Date:        "2002",
		taglib.Genre:       "Rock",
		tagLabel:           "Adipocere Records",
		tagCatalogNumber:   "CDAR054",
		tagBarcode:         "3700132600549",
		tagReleaseCountry:  "France",
	}
	for key, want := range checks {
		if got := firstTag(tags, key); got != want {
			t.Errorf("tag %s = %q, want %q", key, got, want)
		}
	}
	if _, ok := tags[taglib.Title]; ok {
		t.Error("release data must not overwrite the track title")
	}
}

func TestTagsFromReleaseSkipsEmpty(t *testing.T) {
	tags := TagsFromRelease(discogs.Release{Title: "Untitled", Year: "0", CatNo: "none"})
	if len(tags) != 1 {
		t.Errorf("expected only the album tag, got %v", tags)
	}
	if firstTag(tags, taglib.Album) != "Untitled" {
		t.Errorf("album = %q", firstTag(tags, taglib.Album))
	}
}

func TestWriteTags(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	if err := WriteTags(path, psychose); err != nil {
		t.Fatalf("WriteTags failed: %v", err)
	}

	artist, album, err := ReadQuery(path)
	if err != nil {
		t.Fatalf("ReadQuery failed: %v", err)
	}
	if artist != "Benighted" || album != "Psychose" {
		t.Errorf("ReadQuery = %q/%q, want Benighted/Psychose", artist, album)
	}
}

func TestWriteArtwork(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	if err := WriteArtwork(path, fakeImage); err != nil {
		t.Fatalf("WriteArtwork failed: %v", err)
	}

	data, err := taglib.ReadImage(path)
	if err != nil {
		t.Fatalf("failed to read image: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected embedded image data, got empty")
	}
}

func TestWriteArtworkEmpty(t *testing.T) {
	// Should be a no-op with empty data
	if err := WriteArtwork("/nonexistent", nil); err != nil {
		t.Errorf("expected nil error for empty image, got %v", err)
	}
}

func TestWriteTagsNonexistentFile(t *testing.T) {
	if err := WriteTags("/nonexistent/file.mp3", psychose); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestArtworkURL(t *testing.T) {
	tests := []struct {
		name string
		rel  discogs.Release
		want string
	}{
		{
			name: "cover preferred",
			rel:  discogs.Release{Thumb: "https://i.discogs.com/t.jpg", CoverImage: "https://i.discogs.com/c.jpg"},
			want: "https://i.discogs.com/c.jpg",
		},
		{
			name: "spacer cover falls back to thumb",
			rel:  discogs.Release{Thumb: "https://i.discogs.com/t.jpg", CoverImage: "https://s.discogs.com/images/spacer.gif"},
			want: "https://i.discogs.com/t.jpg",
		},
		{
			name: "none",
			rel:  discogs.Release{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArtworkURL(tt.rel); got != tt.want {
				t.Errorf("ArtworkURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api-img.discogs.com/x/R-679234-1146818572.jpeg.jpg", ".jpg"},
		{"https://i.discogs.com/cover.PNG?width=600", ".png"},
		{"https://i.discogs.com/cover.webp", ".webp"},
		{"https://i.discogs.com/fit-in/150x150/filters:strip_icc()", ".jpg"},
		{"://bad", ".jpg"},
	}
	for _, tt := range tests {
		if got := ExtensionFromURL(tt.url); got != tt.want {
			t.Errorf("ExtensionFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
