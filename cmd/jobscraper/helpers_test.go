package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomToken(t *testing.T) {
	tok, err := randomToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)

	other, err := randomToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestShutdownHandler(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		remote  string
		token   string
		status  int
		stopped bool
	}{
		{"wrong method", http.MethodGet, "127.0.0.1:5555", "secret", http.StatusMethodNotAllowed, false},
		{"remote caller", http.MethodPost, "10.0.0.7:5555", "secret", http.StatusForbidden, false},
		{"missing token", http.MethodPost, "127.0.0.1:5555", "", http.StatusUnauthorized, false},
		{"bad token", http.MethodPost, "[::1]:5555", "nope", http.StatusUnauthorized, false},
		{"ok", http.MethodPost, "127.0.0.1:5555", "secret", http.StatusOK, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, stop := context.WithCancel(context.Background())
			defer stop()

			req := httptest.NewRequest(tc.method, "/shutdown", nil)
			req.RemoteAddr = tc.remote
			if tc.token != "" {
				req.Header.Set("X-Shutdown-Token", tc.token)
			}
			rec := httptest.NewRecorder()

			shutdownHandler("secret", stop)(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.stopped, ctx.Err() != nil)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, -4))
	assert.False(t, newLogger("info").Enabled(ctx, -4))
	assert.False(t, newLogger("WARN").Enabled(ctx, 0))
	assert.True(t, newLogger("bogus").Enabled(ctx, 0))
}
