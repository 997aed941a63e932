// Package ollama implements embed.Model on top of Ollama's HTTP
// embeddings API.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hotjob/indexer/pkg/resilience"
	"github.com/tidwall/gjson"
)

// DefaultModel is the Ollama packaging of all-MiniLM-L6-v2.
const DefaultModel = "all-minilm"

// EmbedClient calls POST /api/embeddings for one text at a time.
type EmbedClient struct {
	http  *resty.Client
	model string
	dims  int
	guard *resilience.Guard
}

// Option tweaks an EmbedClient.
type Option func(*EmbedClient)

// WithGuard replaces the default rate limit and circuit breaker.
func WithGuard(g *resilience.Guard) Option {
	return func(c *EmbedClient) { c.guard = g }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *EmbedClient) { c.http.SetTimeout(d) }
}

// NewEmbedClient creates an Ollama embedding client for a model that
// produces dims-length vectors.
func NewEmbedClient(baseURL, model string, dims int, opts ...Option) *EmbedClient {
	if model == "" {
		model = DefaultModel
	}
	c := &EmbedClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(60 * time.Second),
		model: model,
		dims:  dims,
		guard: resilience.NewGuard(20, 4, resilience.DefaultBreakerOpts),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *EmbedClient) Name() string    { return "ollama/" + c.model }
func (c *EmbedClient) Dimensions() int { return c.dims }

// Encode returns the embedding of text.
func (c *EmbedClient) Encode(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]any{"model": c.model, "prompt": text}).
			Post("/api/embeddings")
		if err != nil {
			return fmt.Errorf("ollama embed: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("ollama embed: status %d: %s", resp.StatusCode(), gjson.GetBytes(resp.Body(), "error").String())
		}
		values := gjson.GetBytes(resp.Body(), "embedding").Array()
		if len(values) == 0 {
			return fmt.Errorf("ollama embed: response has no embedding")
		}
		out = make([]float32, len(values))
		for i, v := range values {
			out[i] = float32(v.Float())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
