package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"discogs/internal/logger"
	"discogs/internal/metadata"
	"discogs/internal/provider/discogs"
	"discogs/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const defaultParallel = 4

type Hooks struct {
	OnReleasesFound func(total int)
	OnSaved         func(path string, n int64)
	OnFailed        func(release discogs.Release, err error)
}

// Options controls a cover download batch.
type Options struct {
	Dir      string
	Limit    int // releases to fetch; 0 means all
	Parallel int
}

// Stats counts the outcome of a cover batch.
type Stats struct {
	Total   int
	Saved   int
	Skipped int
	Failed  int
	Bytes   int64
}

// FetchCovers searches Discogs for releases matching q and saves each
// release's cover art into opts.Dir as <release id><ext>. A failed image,
// non-2xx responses included, is counted and reported through hooks; only
// cancellation or a failed search aborts the batch.
func FetchCovers(ctx context.Context, src metadata.Source, log *logger.Logger, q metadata.Query, opts Options, hooks Hooks) (Stats, error) {
	var stats Stats

	res, err := src.SearchReleases(ctx, q.Artist, q.Album)
	if err != nil {
		return stats, fmt.Errorf("release search failed: %w", err)
	}
	if res.StatusCode >= 300 {
		return stats, fmt.Errorf("release search returned HTTP %d: %s", res.StatusCode, res.Raw)
	}

	releases := res.Items
	if opts.Limit > 0 && opts.Limit < len(releases) {
		releases = releases[:opts.Limit]
	}
	stats.Total = len(releases)
	if hooks.OnReleasesFound != nil {
		hooks.OnReleasesFound(len(releases))
	}
	log.Debug("Fetching covers for %d releases into %s", len(releases), opts.Dir)

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = defaultParallel
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for _, r := range releases {
		art := metadata.ArtworkURL(r)
		if art == "" {
			log.Debug("Release %d has no artwork", r.ID)
			mu.Lock()
			stats.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			dst := filepath.Join(opts.Dir, strconv.Itoa(r.ID)+metadata.ExtensionFromURL(art))
			n, err := utils.SaveStream(dst, func(w io.Writer) error {
				return src.DownloadAlbumArt(ctx, art, w)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				stats.Failed++
				log.Warn("Failed to save cover for release %d: %v", r.ID, err)
				if hooks.OnFailed != nil {
					hooks.OnFailed(r, err)
				}
				return nil
			}
			stats.Saved++
			stats.Bytes += n
			if hooks.OnSaved != nil {
				hooks.OnSaved(dst, n)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("cover download cancelled: %w", err)
	}
	return stats, nil
}
