package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hotjob/indexer/engine/embed"
	"github.com/hotjob/indexer/pkg/resilience"
)

func TestEncode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "all-minilm" || body["prompt"] != "python developer" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"embedding":[0.25,-0.5,1]}`))
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "", 3)
	got, err := c.Encode(context.Background(), "python developer")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 0.25 || got[1] != -0.5 {
		t.Fatalf("got %v", got)
	}
	if c.Name() != "ollama/all-minilm" || c.Dimensions() != 3 {
		t.Fatalf("name=%s dims=%d", c.Name(), c.Dimensions())
	}
}

func TestEncodeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "missing", 384)
	if _, err := c.Encode(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEncodeEmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	if _, err := NewEmbedClient(srv.URL, "", 384).Encode(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBreakerOpensOnRepeatedFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := resilience.NewGuard(0, 0, resilience.BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	c := NewEmbedClient(srv.URL, "", 384, WithGuard(g), WithTimeout(time.Second))
	for i := 0; i < 2; i++ {
		c.Encode(context.Background(), "x")
	}
	if _, err := c.Encode(context.Background(), "x"); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("server saw %d calls, want 2", calls)
	}
}

func TestGeneratorOverOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"embedding":[1,0]}`))
	}))
	defer srv.Close()

	g := embed.NewGenerator(NewEmbedClient(srv.URL, "", 3), nil)
	if _, err := g.Embed(context.Background(), "text"); !errors.Is(err, embed.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

var _ embed.Model = (*EmbedClient)(nil)
