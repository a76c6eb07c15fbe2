package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, any origin
	},
}

const (
	wsReadLimit   = 64 * 1024
	wsPingPeriod  = 30 * time.Second
	wsWriteWindow = 10 * time.Second
	wsMaxInFlight = 4 // concurrent searches per connection
)

// wsRequest is one search sent over the socket. ID is echoed back so the
// client can match answers, which may arrive out of order.
type wsRequest struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "releases" or "artists"
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

type wsResponse struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Results json.RawMessage `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	var writeMu sync.Mutex
	send := func(resp wsResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWindow))
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debug("Failed to write WebSocket message: %v", err)
		}
	}

	// Keep the connection alive
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWindow))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	// Once wsMaxInFlight searches are running, reading pauses until one ends.
	var g errgroup.Group
	g.SetLimit(wsMaxInFlight)
	defer g.Wait()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket read failed: %v", err)
			}
			cancel()
			return
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			send(wsResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}

		g.Go(func() error {
			send(s.answer(ctx, req))
			return nil
		})
	}
}

func (s *Server) answer(ctx context.Context, req wsRequest) wsResponse {
	resp := wsResponse{ID: req.ID, Type: req.Type}

	switch req.Type {
	case "releases":
		res, err := s.client.SearchReleases(ctx, req.Artist, req.Album)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Results = res.Raw
	case "artists":
		res, err := s.client.SearchArtists(ctx, req.Artist)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Results = res.Raw
	default:
		resp.Error = fmt.Sprintf("unknown request type %q", req.Type)
	}
	return resp
}
