package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New("test-key", WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()), WithRateLimit(rate.Inf, 1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
	}
	c, err := New("k", WithModel(""))
	if err != nil || c.Model() != DefaultModel {
		t.Fatalf("New() = %v, %v; want default model", c, err)
	}
}

func TestUpload(t *testing.T) {
	var signed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != "ocr" {
			t.Errorf("purpose = %q, want ocr", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "1.pdf" || string(data) != "%PDF-1.4 test" {
			t.Errorf("file = %q %q", hdr.Filename, data)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "file-123", "purpose": "ocr"})
	})
	mux.HandleFunc("GET /v1/files/{id}/url", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "file-123" || r.URL.Query().Get("expiry") != "24" {
			t.Errorf("signed url request = %s", r.URL)
		}
		signed.Store(true)
		json.NewEncoder(w).Encode(map[string]string{"url": "https://files.example/signed/file-123"})
	})
	c := newTestClient(t, mux)

	path := filepath.Join(t.TempDir(), "1.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := c.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got != "https://files.example/signed/file-123" || !signed.Load() {
		t.Fatalf("Upload() = %q", got)
	}
}

func TestUploadMissingFile(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	if _, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "none.pdf")); err == nil {
		t.Fatalf("Upload() = nil error for a missing file")
	}
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != DefaultModel || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("request = %+v", req)
		}
		parts := req.Messages[0].Content
		if len(parts) != 2 || parts[0].Type != "text" || parts[0].Text != "find certificates" ||
			parts[1].Type != "document_url" || parts[1].DocumentURL != "https://files.example/doc" {
			t.Errorf("content parts = %+v", parts)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"1. Сертификат\n   - Бетон\n"}}]}`)
	}))

	got, err := c.Complete(context.Background(), "find certificates", "https://files.example/doc")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "1. Сертификат\n   - Бетон" {
		t.Fatalf("Complete() = %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
		}))
		_, err := c.Complete(context.Background(), "p", "")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || !strings.Contains(apiErr.Body, "Unauthorized") {
			t.Fatalf("Complete() error = %v, want APIError 401", err)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"choices":[]}`)
		}))
		if _, err := c.Complete(context.Background(), "p", ""); err == nil {
			t.Fatalf("Complete() = nil error without choices")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		var hits atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Complete(ctx, "p", ""); !errors.Is(err, context.Canceled) {
			t.Fatalf("Complete() error = %v, want context.Canceled", err)
		}
		if hits.Load() != 0 {
			t.Fatalf("request sent after cancellation")
		}
	})
}
