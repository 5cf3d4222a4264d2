package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guide-server/utils/errors"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	h := ErrorMiddleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guide", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.InvalidInput("limit must be positive"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"INVALID_INPUT","message":"Invalid request data","status":400,"details":"limit must be positive"}`, w.Body.String())

	w = httptest.NewRecorder()
	WriteError(w, fmt.Errorf("wrapped: %w", errors.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	WriteError(w, fmt.Errorf("plain failure"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_ERROR")
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://app.example.com"})(okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/pois", nil)
		r.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		reached := false
		ph := CORSMiddleware([]string{"https://app.example.com"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			reached = true
		}))
		r := httptest.NewRequest(http.MethodOptions, "/guide", nil)
		r.Header.Set("Origin", "https://app.example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		w := httptest.NewRecorder()
		ph.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, reached)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("foreign preflight passes through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/guide", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/pois", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/pois", nil)
		r.Header.Set("Origin", "https://any.example.com")
		w := httptest.NewRecorder()
		CORSMiddleware([]string{"*"})(okHandler).ServeHTTP(w, r)
		assert.Equal(t, "https://any.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLoggingMiddleware_PassesStatus(t *testing.T) {
	h := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
