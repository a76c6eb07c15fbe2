package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"discogs/internal/config"
	"discogs/internal/logger"
	"discogs/internal/provider/discogs"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// -v is --verbose here
func init() {
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

// App holds what every command needs once the configuration is loaded.
type App struct {
	out    io.Writer
	logDir string // file logging is skipped when empty

	cfg       config.Config
	cfgPath   string
	log       *logger.Logger
	closeOnce sync.Once
}

func newApp(out io.Writer, logDir string) *App {
	return &App{out: out, logDir: logDir}
}

// Command builds the root command.
func (a *App) Command() *cli.Command {
	return &cli.Command{
		Name:    "discogs",
		Usage:   "Search Discogs and fetch album art",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show detailed output",
			},
		},
		Commands: []*cli.Command{
			a.releasesCommand(),
			a.artistsCommand(),
			a.artCommand(),
			a.coversCommand(),
			a.tagCommand(),
			a.initConfigCommand(),
		},
	}
}

// setup loads the configuration and starts logging.
// Priority: CLI flags > environment > config file > defaults
func (a *App) setup(cmd *cli.Command) error {
	a.cfgPath = cmd.String("config")
	cfg, err := config.LoadConfigFile(a.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.cfgPath == "" {
		a.cfgPath = config.FindConfigFile()
	}
	if cmd.Bool("verbose") {
		cfg.Verbose = true
	}
	a.cfg = cfg

	a.log = logger.New(cfg.Verbose)
	if !cfg.Verbose && a.logDir != "" {
		if err := os.MkdirAll(a.logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(a.logDir, fmt.Sprintf("discogs_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := a.log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				a.log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if a.cfgPath != "" {
		a.log.Debug("Loaded configuration from: %s", a.cfgPath)
	}
	return nil
}

// client validates the credentials and builds a Discogs client from the
// loaded configuration.
func (a *App) client() (*discogs.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	hc := &http.Client{Timeout: time.Duration(a.cfg.TimeoutSeconds) * time.Second}
	return discogs.New(a.cfg.Key, a.cfg.Secret,
		discogs.WithHTTPClient(hc),
		discogs.WithBaseURL(a.cfg.APIURL),
		discogs.WithUserAgent(a.cfg.UserAgent),
		discogs.WithLogger(a.log),
	), nil
}

func (a *App) close() {
	a.closeOnce.Do(func() {
		if a.log != nil {
			a.log.Close()
		}
	})
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
