package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/agent"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	result  agent.ChatResult
	err     error
	calls   int
	message string
	hasDL   bool
}

func (f *fakeChat) Chat(ctx context.Context, message string) (agent.ChatResult, error) {
	f.calls++
	f.message = message
	_, f.hasDL = ctx.Deadline()
	return f.result, f.err
}

type fakeAccount struct {
	liked   []youtube.Video
	history []youtube.Video
	err     error

	ratedID string
	rating  string
}

func (f *fakeAccount) Liked(ctx context.Context) ([]youtube.Video, error) {
	return f.liked, f.err
}

func (f *fakeAccount) History(ctx context.Context) ([]youtube.Video, error) {
	return f.history, f.err
}

func (f *fakeAccount) Rate(ctx context.Context, videoID, rating string) error {
	f.ratedID = videoID
	f.rating = rating
	return f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := New(&fakeChat{}, nil, config.ServerConfig{}).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"mcp-youtube-agent-server"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestChatEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		chat := &fakeChat{result: agent.ChatResult{
			Reply:  "Here are some picks",
			Videos: []youtube.Video{{VideoID: "k1", Title: "K8s", ThumbnailURL: "t", ChannelTitle: "c"}},
		}}
		h := New(chat, nil, config.ServerConfig{}).Handler()

		rec := do(t, h, http.MethodPost, "/api/chat", `{"message":"recommend videos about Kubernetes"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"reply":"Here are some picks","videos":[{"videoId":"k1","title":"K8s","thumbnail":"t","channelTitle":"c"}]}`, rec.Body.String())
		assert.Equal(t, "recommend videos about Kubernetes", chat.message)
		assert.True(t, chat.hasDL, "request timeout must be applied")
	})

	t.Run("empty video list", func(t *testing.T) {
		chat := &fakeChat{result: agent.ChatResult{Reply: "hi", Videos: []youtube.Video{}}}
		rec := do(t, New(chat, nil, config.ServerConfig{}).Handler(), http.MethodPost, "/api/chat", `{"message":"hello"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"reply":"hi","videos":[]}`, rec.Body.String())
	})

	for name, body := range map[string]string{
		"missing message": `{}`,
		"blank message":   `{"message":"   "}`,
		"bad json":        `{"message":`,
	} {
		t.Run(name, func(t *testing.T) {
			chat := &fakeChat{}
			rec := do(t, New(chat, nil, config.ServerConfig{}).Handler(), http.MethodPost, "/api/chat", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Message is required"}`, rec.Body.String())
			assert.Zero(t, chat.calls)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		chat := &fakeChat{}
		body := `{"message":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		rec := do(t, New(chat, nil, config.ServerConfig{}).Handler(), http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, chat.calls)
	})

	t.Run("chat failure hides details", func(t *testing.T) {
		chat := &fakeChat{err: &agent.ChatError{State: agent.StateAwaitingFirstCompletion, Err: errors.New("secret upstream detail")}}
		rec := do(t, New(chat, nil, config.ServerConfig{}).Handler(), http.MethodPost, "/api/chat", `{"message":"hi"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Chat processing error"}`, rec.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(t, New(&fakeChat{}, nil, config.ServerConfig{}).Handler(), http.MethodGet, "/api/chat", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRateEndpoints(t *testing.T) {
	tests := []struct {
		path       string
		wantRating string
		okMessage  string
		failMsg    string
	}{
		{"/api/like", youtube.RatingLike, "Video liked successfully!", "Failed to like video"},
		{"/api/unlike", youtube.RatingNone, "Like removed successfully!", "Failed to unlike video"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			acc := &fakeAccount{}
			h := New(&fakeChat{}, acc, config.ServerConfig{}).Handler()

			rec := do(t, h, http.MethodPost, tt.path, `{"videoId":"abc123"}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true,"message":"`+tt.okMessage+`"}`, rec.Body.String())
			assert.Equal(t, "abc123", acc.ratedID)
			assert.Equal(t, tt.wantRating, acc.rating)

			rec = do(t, h, http.MethodPost, tt.path, `{}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Missing videoId"}`, rec.Body.String())

			acc.ratedID = ""
			rec = do(t, h, http.MethodPost, tt.path, `{"videoId":"`+strings.Repeat("x", MaxBodyBytes)+`"}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, acc.ratedID)

			acc.err = &youtube.ProviderError{Op: "rate", StatusCode: 401}
			rec = do(t, h, http.MethodPost, tt.path, `{"videoId":"abc123"}`)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.failMsg+`"}`, rec.Body.String())
		})
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	acc := &fakeAccount{
		liked:   []youtube.Video{{VideoID: "l1", Title: "Liked"}},
		history: nil,
	}
	h := New(&fakeChat{}, acc, config.ServerConfig{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/liked", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":[{"videoId":"l1","title":"Liked","thumbnail":"","channelTitle":""}]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())

	acc.err = errors.New("oauth2: invalid_grant")
	rec = do(t, h, http.MethodGet, "/api/liked", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch liked videos"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/history", "")
	assert.JSONEq(t, `{"error":"Failed to fetch watch history"}`, rec.Body.String())
}

func TestAccountNotConfigured(t *testing.T) {
	h := New(&fakeChat{}, nil, config.ServerConfig{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/liked", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/like", `{"videoId":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSAndRequestID(t *testing.T) {
	h := New(&fakeChat{}, nil, config.ServerConfig{AllowedOrigin: "http://localhost:5173"}).Handler()

	rec := do(t, h, http.MethodOptions, "/api/chat", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	defaults := New(&fakeChat{}, nil, config.ServerConfig{}).Handler()
	rec = do(t, defaults, http.MethodGet, "/health", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	defaults.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}
