package api

import (
	"context"
	"encoding/json"
	"hndigest/internal/domain"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubDigester struct {
	stories []domain.Story
	calls   int
}

func (s *stubDigester) Build(_ context.Context) []domain.Story {
	s.calls++

	return s.stories
}

func serveRequest(t *testing.T, r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)

	return w
}

func TestGetStoriesReturnsDigest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	d := &stubDigester{stories: []domain.Story{
		{Title: "Example", URL: "https://example.com", Score: 42, Text: "Example Story ", Summary: "Short."},
		{Title: "No text", URL: "https://example.com/2", Score: 1},
	}}

	w := serveRequest(t, NewRouter(d, nil, slog.Default()), http.MethodGet, "/", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if d.calls != 1 {
		t.Errorf("expected digest to be built once, got %d", d.calls)
	}

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(got))
	}

	for _, key := range []string{"title", "url", "score", "text", "summary"} {
		if _, ok := got[1][key]; !ok {
			t.Errorf("expected key %q to be present even when empty", key)
		}
	}

	if got[0]["summary"] != "Short." || got[0]["score"] != float64(42) {
		t.Errorf("unexpected first story: %v", got[0])
	}
}

func TestGetStoriesEmptyDigest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := serveRequest(t, NewRouter(&stubDigester{stories: []domain.Story{}}, nil, slog.Default()), http.MethodGet, "/", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestGetHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	d := &stubDigester{}
	w := serveRequest(t, NewRouter(d, nil, slog.Default()), http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if d.calls != 0 {
		t.Errorf("expected health check not to build the digest")
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := NewRouter(&stubDigester{stories: []domain.Story{}}, []string{"http://allowed.example"}, slog.Default())

	w := serveRequest(t, r, http.MethodGet, "/", http.Header{"Origin": {"http://allowed.example"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.example" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	w = serveRequest(t, r, http.MethodGet, "/", http.Header{"Origin": {"http://other.example"}})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected disallowed origin to be rejected, got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := serveRequest(t, NewRouter(&stubDigester{}, nil, slog.Default()), http.MethodGet, "/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
