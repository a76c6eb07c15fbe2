package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"discogs/internal/logger"
	"discogs/internal/provider/discogs"
)

const defaultConfidenceThreshold = 0.7

// Source is the part of the Discogs client the resolver needs.
type Source interface {
	SearchReleases(ctx context.Context, artist, album string) (discogs.Results[discogs.Release], error)
	DownloadAlbumArt(ctx context.Context, imageURL string, w io.Writer) error
}

// Query names the release to look up. Empty fields are read from each
// file's existing tags.
type Query struct {
	Artist string
	Album  string
}

// Resolver tags audio files with Discogs release data: it searches for the
// release, scores the hits against the query, writes the best one's tags
// and embeds its cover.
type Resolver struct {
	source    Source
	logger    *logger.Logger
	threshold float64
}

// NewResolver creates a new Resolver with the given source.
// If threshold is 0, the default (0.7) is used.
func NewResolver(s Source, log *logger.Logger, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}
	return &Resolver{
		source:    s,
		logger:    log,
		threshold: threshold,
	}
}

// Resolve tags each file in turn. It fails only when every file failed.
func (r *Resolver) Resolve(ctx context.Context, files []string, q Query) error {
	r.logger.Info("Tagging %d files from Discogs", len(files))

	var failed int
	for i, path := range files {
		select {
		case <-ctx.Done():
			return fmt.Errorf("tagging cancelled: %w", ctx.Err())
		default:
		}

		r.logger.Debug("[%d/%d] Processing: %s", i+1, len(files), path)

		if err := r.resolveFile(ctx, path, q); err != nil {
			r.logger.Warn("[%d/%d] Failed to tag %s: %v", i+1, len(files), path, err)
			failed++
		}
	}

	if len(files) > 0 && failed == len(files) {
		return fmt.Errorf("all %d files failed tagging", len(files))
	}
	if failed > 0 {
		r.logger.Warn("%d of %d files failed tagging", failed, len(files))
	}
	return nil
}

func (r *Resolver) resolveFile(ctx context.Context, path string, q Query) error {
	if q.Artist == "" || q.Album == "" {
		artist, album, err := ReadQuery(path)
		if err != nil {
			return err
		}
		if q.Artist == "" {
			q.Artist = artist
		}
		if q.Album == "" {
			q.Album = album
		}
	}
	if q.Album == "" {
		r.logger.Debug("  Skipping: no album to search for")
		return nil
	}

	res, err := r.source.SearchReleases(ctx, q.Artist, q.Album)
	if err != nil {
		return fmt.Errorf("release search failed: %w", err)
	}

	best, ok := r.Best(q, res.Items)
	if !ok {
		r.logger.Debug("  No confident match for %q by %q", q.Album, q.Artist)
		return nil
	}
	r.logger.Debug("  Best match: %q (id %d)", best.Title, best.ID)

	if err := WriteTags(path, best); err != nil {
		return err
	}

	if art := ArtworkURL(best); art != "" {
		var buf bytes.Buffer
		if err := r.source.DownloadAlbumArt(ctx, art, &buf); err != nil {
			r.logger.Warn("  Failed to fetch artwork: %v", err)
			return nil
		}
		if err := WriteArtwork(path, buf.Bytes()); err != nil {
			r.logger.Warn("  Failed to embed artwork: %v", err)
		}
	}

	return nil
}

// Best returns the highest-scoring release, or false when none reaches the
// resolver's threshold.
func (r *Resolver) Best(q Query, releases []discogs.Release) (discogs.Release, bool) {
	if len(releases) == 0 {
		return discogs.Release{}, false
	}

	best := releases[0]
	bestScore := score(q, best)
	for _, rel := range releases[1:] {
		if s := score(q, rel); s > bestScore {
			best, bestScore = rel, s
		}
	}

	if bestScore < r.threshold {
		r.logger.Debug("  Confidence %.2f below threshold %.2f", bestScore, r.threshold)
		return discogs.Release{}, false
	}
	return best, true
}

// score computes a similarity score (0.0-1.0) between the query and a release.
func score(q Query, r discogs.Release) float64 {
	albumScore := similarity(normalize(q.Album), normalize(r.Album()))
	if q.Artist == "" {
		return albumScore
	}
	artistScore := similarity(normalize(q.Artist), normalize(r.Artist()))
	// Weight: 60% album, 40% artist
	return albumScore*0.6 + artistScore*0.4
}

// similarity returns how similar two strings are (0.0-1.0), by compact
// (space-free) equality first and token overlap otherwise.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	if strings.ReplaceAll(a, " ", "") == strings.ReplaceAll(b, " ", "") {
		return 1.0
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	matches := 0
	for _, t := range tokensA {
		if setB[t] {
			matches++
		}
	}

	return float64(matches) / float64(max(len(tokensA), len(tokensB)))
}

// normalize lowercases and strips non-alphanumeric characters for comparison.
// Discogs disambiguates artists as "Name (2)"; the suffix is dropped.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		if isDigits(s[i+2 : len(s)-1]) {
			s = s[:i]
		}
	}

	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
