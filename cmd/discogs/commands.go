package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"discogs/internal/config"
	"discogs/internal/metadata"
	"discogs/internal/pipeline"
	"discogs/internal/progress"
	"discogs/internal/provider/discogs"
	"discogs/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func (a *App) releasesCommand() *cli.Command {
	return &cli.Command{
		Name:  "releases",
		Usage: "Search Discogs releases by artist and album title",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
			&cli.StringFlag{Name: "album", Aliases: []string{"t"}, Usage: "Album (release) title"},
			&cli.BoolFlag{Name: "json", Usage: "Print the raw Discogs results"},
		},
		Action: a.runReleases,
	}
}

func (a *App) runReleases(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.close()

	artist, album := cmd.String("artist"), cmd.String("album")
	if artist == "" && album == "" {
		return fmt.Errorf("--artist or --album is required")
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.SearchReleases(ctx, artist, album)
	if err != nil {
		return err
	}

	return report(a, res, cmd.Bool("json"), "ID\tYEAR\tTITLE\tFORMAT\tCOUNTRY", func(r discogs.Release) string {
		return fmt.Sprintf("%d\t%s\t%s\t%s\t%s", r.ID, r.Year, r.Title, strings.Join(r.Format, ", "), r.Country)
	})
}

func (a *App) artistsCommand() *cli.Command {
	return &cli.Command{
		Name:      "artists",
		Usage:     "Search Discogs artists by name",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
			&cli.BoolFlag{Name: "json", Usage: "Print the raw Discogs results"},
		},
		Action: a.runArtists,
	}
}

func (a *App) runArtists(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.close()

	artist := cmd.String("artist")
	if artist == "" {
		artist = strings.Join(cmd.Args().Slice(), " ")
	}
	if artist == "" {
		return fmt.Errorf("an artist name is required")
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.SearchArtists(ctx, artist)
	if err != nil {
		return err
	}

	return report(a, res, cmd.Bool("json"), "ID\tNAME\tURI", func(ar discogs.Artist) string {
		return fmt.Sprintf("%d\t%s\t%s", ar.ID, ar.Name(), ar.URI)
	})
}

// report prints search results as a table, or as the raw Discogs payload
// when asked to or when the payload is not a list of results.
func report[T any](a *App, res discogs.Results[T], asJSON bool, header string, row func(T) string) error {
	if res.StatusCode >= 300 {
		return fmt.Errorf("discogs returned HTTP %d: %s", res.StatusCode, res.Raw)
	}

	if asJSON || res.Items == nil {
		a.printf("%s\n", res.Raw)
		return nil
	}
	if len(res.Items) == 0 {
		a.printf("No results\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, item := range res.Items {
		fmt.Fprintln(tw, row(item))
	}
	return tw.Flush()
}

func (a *App) artCommand() *cli.Command {
	return &cli.Command{
		Name:  "art",
		Usage: "Download one image from Discogs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Image URL (a release's cover_image or thumb)", Required: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default: cover<ext> in output_dir)"},
		},
		Action: a.runArt,
	}
}

func (a *App) runArt(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.close()

	imageURL := cmd.String("url")
	out := cmd.String("out")
	if out == "" {
		out = filepath.Join(a.cfg.OutputDir, "cover"+metadata.ExtensionFromURL(imageURL))
	}

	c, err := a.client()
	if err != nil {
		return err
	}

	n, err := utils.SaveStream(out, func(w io.Writer) error {
		return c.DownloadAlbumArt(ctx, imageURL, w)
	})
	if err != nil {
		return err
	}

	a.printf("Saved %s (%s)\n", out, humanize.Bytes(uint64(n)))
	return nil
}

func (a *App) coversCommand() *cli.Command {
	return &cli.Command{
		Name:  "covers",
		Usage: "Search releases and save the cover art of each hit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
			&cli.StringFlag{Name: "album", Aliases: []string{"t"}, Usage: "Album (release) title"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory (default: output_dir)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of releases (0 for all)", Value: 5},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Parallel downloads", Value: 4},
		},
		Action: a.runCovers,
	}
}

func (a *App) runCovers(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.close()

	q := metadata.Query{Artist: cmd.String("artist"), Album: cmd.String("album")}
	if q.Artist == "" && q.Album == "" {
		return fmt.Errorf("--artist or --album is required")
	}
	dir := cmd.String("dir")
	if dir == "" {
		dir = a.cfg.OutputDir
	}
	parallel := cmd.Int("parallel")
	if parallel < 1 || parallel > 10 {
		return fmt.Errorf("--parallel must be between 1 and 10, got %d", parallel)
	}

	c, err := a.client()
	if err != nil {
		return err
	}

	var bar *progress.Bar
	hooks := pipeline.Hooks{
		OnReleasesFound: func(total int) {
			if !a.cfg.Verbose && total > 0 {
				bar = progress.New(a.out, total)
			}
		},
		OnSaved: func(path string, n int64) {
			if bar != nil {
				bar.Done(n)
			}
		},
		OnFailed: func(discogs.Release, error) {
			if bar != nil {
				bar.Fail()
			}
		},
	}

	stats, err := pipeline.FetchCovers(ctx, c, a.log, q, pipeline.Options{
		Dir:      dir,
		Limit:    int(cmd.Int("limit")),
		Parallel: int(parallel),
	}, hooks)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if stats.Total == 0 {
		a.printf("No releases found\n")
		return nil
	}
	a.printf("Saved %d of %d covers (%s) to %s\n", stats.Saved, stats.Total, humanize.Bytes(uint64(stats.Bytes)), dir)
	if stats.Skipped > 0 {
		a.printf("%d releases had no artwork\n", stats.Skipped)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d covers failed to download", stats.Failed)
	}
	return nil
}

func (a *App) tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Tag audio files with the best matching Discogs release and embed its cover",
		ArgsUsage: "<file or directory>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name (default: read from each file)"},
			&cli.StringFlag{Name: "album", Aliases: []string{"t"}, Usage: "Album title (default: read from each file)"},
		},
		Action: a.runTag,
	}
}

func (a *App) runTag(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.close()

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one audio file or directory is required")
	}
	files, err := utils.CollectAudioFiles(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files found")
	}

	c, err := a.client()
	if err != nil {
		return err
	}

	r := metadata.NewResolver(c, a.log, a.cfg.ConfidenceThreshold)
	if err := r.Resolve(ctx, files, metadata.Query{Artist: cmd.String("artist"), Album: cmd.String("album")}); err != nil {
		return err
	}
	a.log.Info("=== Tagging completed ===")
	return nil
}

func (a *App) initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Create a default config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
		},
		Action: a.runInitConfig,
	}
}

func (a *App) runInitConfig(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		a.printf("Config file already exists at: %s\n", path)
		a.printf("Use --force to recreate it.\n")
		return nil
	}

	if err := config.SaveConfigFile(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	a.printf("Created default config file at: %s\n", path)
	a.printf("\nSet your Discogs credentials before searching:\n")
	a.printf("  key, secret: consumer key and secret (or DISCOGS_KEY / DISCOGS_SECRET)\n")
	a.printf("  output_dir: where art and covers are saved\n")
	a.printf("  timeout_seconds: 1-120 (HTTP timeout)\n")
	a.printf("  confidence_threshold: 0.0-1.0 (minimum match score for tag)\n")
	return nil
}
