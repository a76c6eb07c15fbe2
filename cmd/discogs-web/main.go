package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"discogs/internal/config"
	"discogs/internal/logger"
	"discogs/internal/provider/discogs"
	"discogs/internal/shutdown"
	"discogs/internal/web"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "discogs-web",
		Usage: "Serve Discogs search and album art over HTTP and WebSocket",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port (default: web_port from config)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
			},
		},
		Action: serve,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfigFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if port := int(cmd.Int("port")); port != 0 {
		cfg.WebPort = port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Setup logger with file logging
	l := logger.New(cfg.Verbose)
	logDir := config.GetDefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err == nil {
		logPath := filepath.Join(logDir, fmt.Sprintf("discogs-web-%d.log", time.Now().Unix()))
		if err := l.SetFileLog(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
		}
	}
	defer l.Close()

	sh := shutdown.New(ctx)
	sh.Listen()

	client := discogs.New(cfg.Key, cfg.Secret,
		discogs.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}),
		discogs.WithBaseURL(cfg.APIURL),
		discogs.WithUserAgent(cfg.UserAgent),
		discogs.WithLogger(l.With("component", "discogs")),
	)
	server := web.NewServer(sh.Context(), client, l)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.WebPort),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sh.AddCleanup(func() {
		l.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown error: %v", err)
		}
	})

	l.Info("Starting web server on port %d", cfg.WebPort)
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		sh.Shutdown()
		return fmt.Errorf("server error: %w", err)
	}

	// ListenAndServe returns as soon as Shutdown starts; wait for it to finish.
	sh.Shutdown()
	sh.Wait()
	l.Info("Server stopped")
	return nil
}
