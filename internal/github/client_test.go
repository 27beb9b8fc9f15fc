package github

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "", WithBaseURL("://nope")); err == nil {
		t.Fatalf("expected error for invalid base URL")
	}
}

func TestNewClient_LogsAndSendsAuthHeader(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name     string
		token    string
		wantAuth bool
	}{
		{name: "unauthenticated", token: "", wantAuth: false},
		{name: "authenticated", token: "test-token", wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAuth = ""
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			c, err := NewClient(ctx, tt.token, WithLogger(logger), WithBaseURL(server.URL))
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}

			req, err := c.API.NewRequest("GET", "rate_limit", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if _, err := c.API.Do(ctx, req, nil); err != nil {
				t.Fatalf("Do: %v", err)
			}

			if !strings.Contains(buf.String(), "github api request") {
				t.Fatalf("expected request log, got: %q", buf.String())
			}
			if tt.wantAuth && !strings.Contains(gotAuth, "test-token") {
				t.Fatalf("expected Authorization header to carry token, got %q", gotAuth)
			}
			if !tt.wantAuth && gotAuth != "" {
				t.Fatalf("expected no Authorization header, got %q", gotAuth)
			}
		})
	}
}
