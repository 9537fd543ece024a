// Package server — HTTP API агента: чат и операции с аккаунтом YouTube.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/agent"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// ServiceName возвращается в /health.
const ServiceName = "mcp-youtube-agent-server"

// RequestIDHeader — заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// MaxBodyBytes ограничивает тело POST запросов.
const MaxBodyBytes = 1 << 20

// ChatService — цикл чата. *agent.Orchestrator реализует этот интерфейс.
type ChatService interface {
	Chat(ctx context.Context, message string) (agent.ChatResult, error)
}

// Account — операции с аккаунтом пользователя. *youtube.Client реализует этот интерфейс.
type Account interface {
	Liked(ctx context.Context) ([]youtube.Video, error)
	History(ctx context.Context) ([]youtube.Video, error)
	Rate(ctx context.Context, videoID, rating string) error
}

// Server собирает обработчики API.
type Server struct {
	chat    ChatService
	account Account
	cfg     config.ServerConfig
}

// New создаёт сервер. account может быть nil: тогда операции с аккаунтом
// отвечают 500.
func New(chat ChatService, account Account, cfg config.ServerConfig) *Server {
	return &Server{
		chat:    chat,
		account: account,
		cfg:     cfg.GetDefaults(),
	}
}

// Handler возвращает корневой http.Handler со всеми маршрутами.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/like", s.handleRate(youtube.RatingLike, "Video liked successfully!", "Failed to like video"))
	mux.HandleFunc("POST /api/unlike", s.handleRate(youtube.RatingNone, "Like removed successfully!", "Failed to unlike video"))
	mux.HandleFunc("GET /api/liked", s.handlePlaylist("liked", "Failed to fetch liked videos", s.liked))
	mux.HandleFunc("GET /api/history", s.handlePlaylist("history", "Failed to fetch watch history", s.history))

	return requestIDMiddleware(corsMiddleware(s.cfg.AllowedOrigin, mux))
}

// NewHTTPServer оборачивает Handler в http.Server с адресом из конфигурации.
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type rateRequest struct {
	VideoID string `json:"videoId"`
}

type rateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.chat.Chat(ctx, req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		utils.Error("Chat request failed",
			"request_id", requestID(r),
			"error", err,
			"error_type", youtube.ClassifyError(err))
		writeError(w, http.StatusInternalServerError, "Chat processing error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRate(rating, okMessage, failMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rateRequest
		if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.VideoID) == "" {
			writeError(w, http.StatusBadRequest, "Missing videoId")
			return
		}
		if s.account == nil {
			writeError(w, http.StatusInternalServerError, failMessage)
			return
		}

		if err := s.account.Rate(r.Context(), req.VideoID, rating); err != nil {
			utils.Error("Rate request failed",
				"request_id", requestID(r),
				"video_id", req.VideoID,
				"rating", rating,
				"error", err,
				"hint", youtube.ClassifyError(err).HumanMessage())
			writeError(w, http.StatusInternalServerError, failMessage)
			return
		}

		writeJSON(w, http.StatusOK, rateResponse{Success: true, Message: okMessage})
	}
}

func (s *Server) liked(ctx context.Context) ([]youtube.Video, error) {
	return s.account.Liked(ctx)
}

func (s *Server) history(ctx context.Context) ([]youtube.Video, error) {
	return s.account.History(ctx)
}

func (s *Server) handlePlaylist(key, failMessage string, list func(context.Context) ([]youtube.Video, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.account == nil {
			writeError(w, http.StatusInternalServerError, failMessage)
			return
		}

		videos, err := list(r.Context())
		if err != nil {
			utils.Error("Playlist request failed",
				"request_id", requestID(r),
				"playlist", key,
				"error", err,
				"hint", youtube.ClassifyError(err).HumanMessage())
			writeError(w, http.StatusInternalServerError, failMessage)
			return
		}
		if videos == nil {
			videos = []youtube.Video{}
		}

		writeJSON(w, http.StatusOK, map[string][]youtube.Video{key: videos})
	}
}

// decodeBody читает JSON тело не длиннее MaxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
