package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/seedcodec"
	apperrors "github.com/kapu/player-generator-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	wsReadLimit    = 4096
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsRequest asks for one profile. An empty Seed draws a fresh one.
type wsRequest struct {
	Nationality string `json:"nationality"`
	Seed        string `json:"seed,omitempty"`
}

type wsResponse struct {
	Profile *domain.GeneratedProfile `json:"profile,omitempty"`
	Error   string                   `json:"error,omitempty"`
	Code    string                   `json:"code,omitempty"`
}

// handleWebSocket answers every request frame with one response frame until
// the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		resp := s.answer(r, req)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debug("WebSocket write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) answer(r *http.Request, req wsRequest) wsResponse {
	nationality, err := s.profiles.Registry().BySlug(req.Nationality)
	if err != nil {
		return s.wsError(r, err)
	}

	var seed *uint64
	if req.Seed != "" {
		decoded, err := seedcodec.Decode(req.Seed)
		if err != nil {
			return s.wsError(r, err)
		}
		seed = &decoded
	}

	profile, err := s.profiles.Generate(r.Context(), nationality.ID, seed)
	if err != nil {
		return s.wsError(r, err)
	}
	return wsResponse{Profile: profile}
}

func (s *Server) wsError(r *http.Request, err error) wsResponse {
	_, msg := s.failure(r, err)
	return wsResponse{Error: msg, Code: apperrors.Code(err)}
}
