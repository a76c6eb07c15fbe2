package web

import (
	"context"
	"io"
	"net/http"

	"discogs/internal/logger"
	"discogs/internal/provider/discogs"
)

// Client is the Discogs API surface the server proxies.
type Client interface {
	SearchReleases(ctx context.Context, artist, album string) (discogs.Results[discogs.Release], error)
	SearchArtists(ctx context.Context, artist string) (discogs.Results[discogs.Artist], error)
	DownloadAlbumArt(ctx context.Context, imageURL string, w io.Writer) error
}

type Server struct {
	ctx    context.Context
	client Client
	logger *logger.Logger
}

func NewServer(ctx context.Context, client Client, log *logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		client: client,
		logger: log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/releases", s.handleReleases)
	mux.HandleFunc("/api/artists", s.handleArtists)
	mux.HandleFunc("/api/art", s.handleArt)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
