package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmind/schoolmind/internal/chat"
	"github.com/schoolmind/schoolmind/internal/log"
)

func TestServer_HealthEndpoints(t *testing.T) {
	logger := log.NewNop()
	srv := NewServer(nil, nil, nil, logger)
	handler := srv.Handler()

	t.Run("GET /health returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("GET /ready returns 503 when pool is nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestServer_ChatRouting(t *testing.T) {
	sessionID := uuid.New()
	svc := &mockChatService{reply: &chat.Reply{SessionID: sessionID, Text: "hi there"}}
	srv := NewServer(svc, &mockSessionReader{}, nil, log.NewNop())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hi there")
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := NewServer(nil, nil, nil, log.NewNop())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Run_GracefulShutdown(t *testing.T) {
	srv := NewServer(nil, nil, nil, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0")
	}()

	// Give the listener a moment to come up, then trigger shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
