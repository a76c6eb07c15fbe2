package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"discogs/internal/metadata"
	"discogs/internal/provider/discogs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleReleases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	artist, album := q.Get("artist"), q.Get("album")
	if artist == "" && album == "" {
		http.Error(w, "artist or album is required", http.StatusBadRequest)
		return
	}

	res, err := s.client.SearchReleases(r.Context(), artist, album)
	if err != nil {
		s.logger.Warn("Release search failed: %v", err)
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}
	writeRaw(w, res.StatusCode, res.Raw)
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	artist := r.URL.Query().Get("artist")
	if artist == "" {
		http.Error(w, "artist is required", http.StatusBadRequest)
		return
	}

	res, err := s.client.SearchArtists(r.Context(), artist)
	if err != nil {
		s.logger.Warn("Artist search failed: %v", err)
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}
	writeRaw(w, res.StatusCode, res.Raw)
}

// handleArt streams an image straight from Discogs into the response. A
// non-2xx image response is answered with its status and a JSON error.
func (s *Server) handleArt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imageURL := r.URL.Query().Get("url")
	if !strings.HasPrefix(imageURL, "https://") && !strings.HasPrefix(imageURL, "http://") {
		http.Error(w, "url must be an http(s) image URL", http.StatusBadRequest)
		return
	}

	if ct := mime.TypeByExtension(metadata.ExtensionFromURL(imageURL)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	cw := &countingWriter{w: w}
	if err := s.client.DownloadAlbumArt(r.Context(), imageURL, cw); err != nil {
		s.logger.Warn("Image fetch failed: %v", err)
		if cw.n == 0 {
			status := http.StatusBadGateway
			var se *discogs.StatusError
			if errors.As(err, &se) {
				status = se.StatusCode
			}
			writeJSONError(w, status, err)
		}
		return
	}
	s.logger.Debug("Streamed %d bytes from %s", cw.n, imageURL)
}

// countingWriter tracks whether any bytes reached the client, after which
// the status line can no longer change.
type countingWriter struct {
	w http.ResponseWriter
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeRaw(w http.ResponseWriter, status int, raw []byte) {
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
