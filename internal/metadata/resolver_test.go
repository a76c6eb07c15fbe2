package metadata

import (
	"context"
	"errors"
	"io"
	"testing"

	"discogs/internal/logger"
	"discogs/internal/provider/discogs"

	"go.senan.xyz/taglib"
)

// mockSource implements Source for testing.
type mockSource struct {
	releases  []discogs.Release
	err       error
	image     []byte
	artErr    error
	artURLs   []string
	gotArtist string
	gotAlbum  string
}

func (m *mockSource) SearchReleases(_ context.Context, artist, album string) (discogs.Results[discogs.Release], error) {
	m.gotArtist, m.gotAlbum = artist, album
	if m.err != nil {
		return discogs.Results[discogs.Release]{}, m.err
	}
	return discogs.Results[discogs.Release]{Items: m.releases, Wrapped: true}, nil
}

func (m *mockSource) DownloadAlbumArt(_ context.Context, imageURL string, w io.Writer) error {
	m.artURLs = append(m.artURLs, imageURL)
	if m.artErr != nil {
		return m.artErr
	}
	_, err := w.Write(m.image)
	return err
}

func TestResolveFile(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	err := taglib.WriteTags(path, map[string][]string{
		taglib.Title:  {"Psychose"},
		taglib.Artist: {"benighted"},
		taglib.Album:  {"psychose"},
	}, 0)
	if err != nil {
		t.Fatalf("failed to write initial tags: %v", err)
	}

	src := &mockSource{
		releases: []discogs.Release{
			{ID: 1, Title: "Various - Death Metal Compilation"},
			{ID: 679234, Title: "Benighted - Psychose", Year: "2002", Thumb: "https://i.discogs.com/R-679234.jpg"},
		},
		image: fakeImage,
	}

	resolver := NewResolver(src, logger.New(false), 0)
	if err := resolver.Resolve(context.Background(), []string{path}, Query{}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if src.gotArtist != "benighted" || src.gotAlbum != "psychose" {
		t.Errorf("query read from tags = %q/%q", src.gotArtist, src.gotAlbum)
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.Fatalf("failed to read tags: %v", err)
	}
	if got := firstTag(tags, taglib.Album); got != "Psychose" {
		t.Errorf("album = %q, want Psychose", got)
	}
	if got := firstTag(tags, taglib.Date); got != "2002" {
		t.Errorf("date = %q, want 2002", got)
	}
	if got := firstTag(tags, taglib.Title); got != "Psychose" {
		t.Errorf("title should be preserved, got %q", got)
	}

	if len(src.artURLs) != 1 || src.artURLs[0] != "https://i.discogs.com/R-679234.jpg" {
		t.Errorf("unexpected artwork fetches: %v", src.artURLs)
	}
	if data, err := taglib.ReadImage(path); err != nil || len(data) == 0 {
		t.Errorf("expected embedded artwork, err=%v len=%d", err, len(data))
	}
}

func TestResolveSearchFailure(t *testing.T) {
	src := &mockSource{err: errors.New("connection refused")}
	resolver := NewResolver(src, logger.New(false), 0)

	err := resolver.Resolve(context.Background(), []string{"/nonexistent/a.mp3"}, Query{Artist: "Benighted", Album: "Psychose"})
	if err == nil {
		t.Fatal("expected error when every file fails")
	}
	if src.gotAlbum != "Psychose" {
		t.Errorf("explicit query should skip tag reading, got album %q", src.gotAlbum)
	}
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := NewResolver(&mockSource{}, logger.New(false), 0)
	err := resolver.Resolve(ctx, []string{"a.mp3"}, Query{Album: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want it to wrap context.Canceled", err)
	}
}

func TestResolveSkipsFailedArtwork(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	src := &mockSource{
		releases: []discogs.Release{
			{ID: 679234, Title: "Benighted - Psychose", Year: "2002", CoverImage: "https://i.discogs.com/gone.png"},
		},
		image: []byte("404 page not found\n"),
		artErr: &discogs.CallError{
			Op:  "fetch image",
			URL: "https://i.discogs.com/gone.png",
			Err: &discogs.StatusError{StatusCode: 404, Status: "404 Not Found"},
		},
	}

	resolver := NewResolver(src, logger.New(false), 0)
	if err := resolver.Resolve(context.Background(), []string{path}, Query{Artist: "Benighted", Album: "Psychose"}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := firstTag(tags, taglib.Album); got != "Psychose" {
		t.Errorf("tags should still be written, album = %q", got)
	}
	if data, _ := taglib.ReadImage(path); len(data) != 0 {
		t.Errorf("no artwork should be embedded, got %d bytes", len(data))
	}
}

func TestBest(t *testing.T) {
	resolver := NewResolver(&mockSource{}, logger.New(false), 0)

	releases := []discogs.Release{
		{ID: 1, Title: "Queen - A Night At The Opera"},
		{ID: 2, Title: "Benighted (2) - Psychose"},
		{ID: 3, Title: "Benighted - Identisick"},
	}

	best, ok := resolver.Best(Query{Artist: "Benighted", Album: "Psychose"}, releases)
	if !ok {
		t.Fatal("expected a confident match")
	}
	if best.ID != 2 {
		t.Errorf("best ID = %d, want 2", best.ID)
	}

	if _, ok := resolver.Best(Query{Artist: "Metallica", Album: "Kill 'Em All"}, releases); ok {
		t.Error("unrelated query should not match")
	}
	if _, ok := resolver.Best(Query{Album: "x"}, nil); ok {
		t.Error("empty list should not match")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		query     Query
		release   discogs.Release
		wantAbove float64
		wantBelow float64
	}{
		{
			name:      "exact match",
			query:     Query{Artist: "Benighted", Album: "Psychose"},
			release:   discogs.Release{Title: "Benighted - Psychose"},
			wantAbove: 0.99,
		},
		{
			name:      "album match different artist",
			query:     Query{Artist: "Benighted", Album: "Psychose"},
			release:   discogs.Release{Title: "Someone Else - Psychose"},
			wantAbove: 0.5,
			wantBelow: 0.7,
		},
		{
			name:      "completely different",
			query:     Query{Artist: "Benighted", Album: "Psychose"},
			release:   discogs.Release{Title: "Queen - Jazz"},
			wantBelow: 0.1,
		},
		{
			name:      "no artist in query",
			query:     Query{Album: "Psychose"},
			release:   discogs.Release{Title: "Benighted - Psychose"},
			wantAbove: 0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score(tt.query, tt.release)
			if tt.wantAbove > 0 && got < tt.wantAbove {
				t.Errorf("score = %.4f, want above %.4f", got, tt.wantAbove)
			}
			if tt.wantBelow > 0 && got > tt.wantBelow {
				t.Errorf("score = %.4f, want below %.4f", got, tt.wantBelow)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Benighted (2)", "benighted"},
		{"Guns N' Roses", "guns n roses"},
		{"Live (Remastered)", "live remastered"},
		{"  Psychose ", "psychose"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"psychose", "psychose", 1.0},
		{"", "", 1.0},
		{"something", "", 0.0},
		{"", "something", 0.0},
		{"the weeknd", "theweeknd", 1.0},
		{"a night at the opera", "a day at the races", 0.6},
	}

	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("similarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}
