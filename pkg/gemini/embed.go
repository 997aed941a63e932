// Package gemini implements embed.Model with the Gemini embedding API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini text embedding model.
const DefaultModel = "gemini-embedding-001"

// embedAPI is the subset of *genai.Models the client uses.
type embedAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// EmbedClient asks Gemini for vectors truncated to a fixed dimension.
type EmbedClient struct {
	api   embedAPI
	model string
	dims  int
}

// NewEmbedClient connects to the Gemini API with apiKey.
func NewEmbedClient(ctx context.Context, apiKey, model string, dims int) (*EmbedClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return newWithAPI(client.Models, model, dims), nil
}

func newWithAPI(api embedAPI, model string, dims int) *EmbedClient {
	if model == "" {
		model = DefaultModel
	}
	return &EmbedClient{api: api, model: model, dims: dims}
}

func (c *EmbedClient) Name() string    { return "gemini/" + c.model }
func (c *EmbedClient) Dimensions() int { return c.dims }

// Encode returns the embedding of text as a RETRIEVAL_DOCUMENT.
func (c *EmbedClient) Encode(ctx context.Context, text string) ([]float32, error) {
	dims := int32(c.dims)
	resp, err := c.api.EmbedContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: &dims,
		})
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini embed: no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("gemini embed: invalid value at index %d", i)
		}
	}
	return values, nil
}
