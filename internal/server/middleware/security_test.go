package middleware

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		hsts     bool
		tls      bool
		wantHSTS bool
	}{
		{name: "plain http", wantHSTS: false},
		{name: "forced hsts", hsts: true, wantHSTS: true},
		{name: "tls request", tls: true, wantHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()
			SecurityHeaders(tt.hsts)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	tests := []struct {
		name          string
		maxBytes      int64
		bodySize      int
		wantReadError bool
		wantStatus    int
	}{
		{name: "within limit", maxBytes: 1024, bodySize: 100, wantStatus: http.StatusOK},
		{name: "exactly at limit", maxBytes: 1024, bodySize: 1024, wantStatus: http.StatusOK},
		{name: "declared length too large", maxBytes: 1024, bodySize: 2048, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "disabled with zero", maxBytes: 0, bodySize: 10000, wantStatus: http.StatusOK},
		{name: "disabled with negative", maxBytes: -1, bodySize: 10000, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(strings.Repeat("a", tt.bodySize)))
			rec := httptest.NewRecorder()
			MaxRequestSize(tt.maxBytes)(handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NoError(t, readErr)
		})
	}
}

func TestMaxRequestSize_ChunkedBody(t *testing.T) {
	var readErr error
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	})

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(strings.Repeat("a", 2048)))
	req.ContentLength = -1
	MaxRequestSize(1024)(handler).ServeHTTP(httptest.NewRecorder(), req)

	require.Error(t, readErr)
}

func TestCORS(t *testing.T) {
	allowed := []string{"https://app.example.com"}

	t.Run("allowed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		CORS(allowed)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		CORS(allowed)(okHandler).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		CORS(allowed)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
	})
}

func TestValidateAllowedOrigins(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "https://app.example.com", want: []string{"https://app.example.com"}},
		{name: "trailing slash and spaces", input: " https://a.example.com/ , http://localhost:3000", want: []string{"https://a.example.com", "http://localhost:3000"}},
		{name: "skips empty entries", input: "https://a.example.com,,", want: []string{"https://a.example.com"}},
		{name: "missing scheme", input: "app.example.com", wantErr: true},
		{name: "ftp scheme", input: "ftp://example.com", wantErr: true},
		{name: "with path", input: "https://example.com/app", wantErr: true},
		{name: "with query", input: "https://example.com?x=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAllowedOrigins(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
