package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"webrag/config"
	"webrag/internal/adapter/analyzer"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/retriever"
	"webrag/internal/usecase"
)

type stubSource map[string]string

func (s stubSource) Fetch(ctx context.Context, url string) (string, error) {
	if page, ok := s[url]; ok {
		return page, nil
	}
	return "", errors.New("not found")
}

type stubGenerator struct{}

func (stubGenerator) GenerateAnswer(ctx context.Context, excerpts, question string) (string, error) {
	return "generated answer", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := chunker.NewRecursiveChunker(200, 20)
	if err != nil {
		t.Fatal(err)
	}
	r := retriever.NewTFIDFRetriever(c, index.NewBuilder(analyzer.NewTokenizer(), index.DefaultMaxFeatures))
	src := stubSource{"https://example.com/moon": "NASA plans a fission reactor on the Moon."}
	chain := usecase.NewChain(src, r, stubGenerator{}, usecase.ChainOptions{TopK: 3}, zap.NewNop())
	cfg := config.DefaultConfig().Server
	return NewServer(chain, &cfg, zap.NewNop())
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/input", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHandleInput_Flow(t *testing.T) {
	h := newTestServer(t).Router()

	w := post(t, h, `{"input":"what is planned?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	out := decode(t, w)
	if out["kind"] != "no_index_yet" || out["state"] != "uninitialized" {
		t.Errorf("unexpected response before indexing: %v", out)
	}

	w = post(t, h, `{"input":"https://example.com/moon"}`)
	out = decode(t, w)
	if out["kind"] != "indexed" || out["state"] != "ready" {
		t.Errorf("unexpected index response: %v", out)
	}
	if out["text"] != "Vector store initialized with 1 chunks." {
		t.Errorf("text: got %v", out["text"])
	}

	w = post(t, h, `{"input":"fission reactor"}`)
	out = decode(t, w)
	if out["kind"] != "answer" || out["text"] != "generated answer" {
		t.Errorf("unexpected answer response: %v", out)
	}
	if out["context"] != "NASA plans a fission reactor on the Moon." {
		t.Errorf("context: got %v", out["context"])
	}

	w = post(t, h, `{"input":"https://example.com/missing"}`)
	out = decode(t, w)
	if out["kind"] != "fetch_failure" || out["state"] != "ready" {
		t.Errorf("fetch failure should keep previous index: %v", out)
	}
}

func TestHandleInput_BadRequests(t *testing.T) {
	h := newTestServer(t).Router()

	for _, body := range []string{`not json`, `{"input":"   "}`, `{}`} {
		w := post(t, h, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: got status %d, want 400", body, w.Code)
		}
		if out := decode(t, w); out["error"] == "" {
			t.Errorf("body %q: missing error message", body)
		}
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	out := decode(t, w)
	if out["state"] != "uninitialized" {
		t.Errorf("state: got %v", out["state"])
	}
	if _, ok := out["source"]; ok {
		t.Errorf("source should be omitted before indexing: %v", out)
	}

	post(t, h, `{"input":"https://example.com/moon"}`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	out = decode(t, w)
	if out["state"] != "ready" || out["chunks"] != float64(1) {
		t.Errorf("unexpected status: %v", out)
	}
	src, ok := out["source"].(map[string]interface{})
	if !ok || src["url"] != "https://example.com/moon" {
		t.Errorf("source: got %v", out["source"])
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t).Router()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	if out := decode(t, w); out["status"] != "ok" {
		t.Errorf("body: got %v", out)
	}
}
