package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

func TestHTTPResolver_ResolveStreamURL(t *testing.T) {
	tests := []struct {
		name          string
		contentType   string
		responseBody  string
		statusCode    int
		ctxFunc       func() (context.Context, context.CancelFunc)
		expectedError string
		expectedURL   string
	}{
		{
			name:         "Success",
			contentType:  "application/json; charset=utf-8",
			responseBody: `{"url":"https://cdn.example.com/main.m3u8?token=abc"}`,
			statusCode:   http.StatusOK,
			expectedURL:  "https://cdn.example.com/main.m3u8?token=abc",
		},
		{
			name:          "Error - 401 Unauthorized",
			contentType:   "application/json",
			statusCode:    http.StatusUnauthorized,
			expectedError: "unexpected status code: 401",
		},
		{
			name:          "Error - Not JSON",
			contentType:   "text/html",
			responseBody:  "<html></html>",
			statusCode:    http.StatusOK,
			expectedError: "response is not json",
		},
		{
			name:          "Error - Malformed JSON",
			contentType:   "application/json",
			responseBody:  `{"url":`,
			statusCode:    http.StatusOK,
			expectedError: "failed to decode response",
		},
		{
			name:          "Error - Empty URL",
			contentType:   "application/json",
			responseBody:  `{"url":""}`,
			statusCode:    http.StatusOK,
			expectedError: ErrEmptyURL.Error(),
		},
		{
			name: "Error - Context Cancelled",
			ctxFunc: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			expectedError: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/contents/race-1/stream" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("contentType"); got != "LIVE" {
					t.Errorf("expected contentType LIVE, got %q", got)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer token, got %q", got)
				}
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			var ctx context.Context
			var cancel context.CancelFunc
			if tt.ctxFunc != nil {
				ctx, cancel = tt.ctxFunc()
			} else {
				ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
			}
			defer cancel()

			resolver := NewHTTPResolver(server.URL+"/", zap.NewNop())
			got, err := resolver.ResolveStreamURL(ctx, "secret", domain.ContentRef{ID: "race-1", Type: domain.ContentTypeLive})

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expectedURL {
				t.Errorf("expected url %q, got %q", tt.expectedURL, got)
			}
		})
	}
}

func TestDirect_ResolveStreamURL(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "onboard.mkv")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr bool
	}{
		{name: "https url", id: "https://cdn.example.com/a.m3u8", want: "https://cdn.example.com/a.m3u8"},
		{name: "http url", id: "http://10.0.0.2:8080/live", want: "http://10.0.0.2:8080/live"},
		{name: "local file", id: file, want: file},
		{name: "missing file", id: filepath.Join(dir, "missing.mkv"), wantErr: true},
		{name: "unsupported scheme", id: "ftp://example.com/a.ts", wantErr: true},
		{name: "no host", id: "https:///a.m3u8", wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Direct{}.ResolveStreamURL(context.Background(), "", domain.ContentRef{ID: tt.id})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got url %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, ok := New("", zap.NewNop()).(Direct); !ok {
		t.Error("expected Direct without a base url")
	}
	if _, ok := New("https://api.example.com", zap.NewNop()).(*HTTPResolver); !ok {
		t.Error("expected HTTPResolver with a base url")
	}
	if _, err := (Direct{}).ResolveStreamURL(context.Background(), "", domain.ContentRef{}); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}
