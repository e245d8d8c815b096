package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"docqa/internal/domain"
)

// Config configures the OpenAI-compatible embeddings client. APIKeyEnv names
// the environment variable holding the provider key; local servers (ollama
// and friends) accept any value. The same config must drive the document and
// query embedders so model id and normalization agree between indexing and
// querying.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	BatchSize int
	Normalize bool
	Prefix    string
	Device    string
	Timeout   time.Duration
}

// Client embeds text through an OpenAI-compatible /embeddings endpoint in
// fixed-size batches. Batch boundaries never affect output values; each
// vector depends only on its own text.
type Client struct {
	cfg    Config
	apiKey string
	client *http.Client
}

type embeddingRequest struct {
	Input  []string `json:"input"`
	Model  string   `json:"model"`
	Device string   `json:"device,omitempty"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be > 0, got %d", cfg.Dimension)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		apiKey = "none"
	}

	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += c.cfg.BatchSize {
		end := i + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}
	return all, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := texts
	if c.cfg.Prefix != "" {
		inputs = make([]string, len(texts))
		for i, t := range texts {
			inputs[i] = c.cfg.Prefix + t
		}
	}

	reqBody := embeddingRequest{
		Input:  inputs,
		Model:  c.cfg.Model,
		Device: c.cfg.Device,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &domain.EmbeddingError{Model: c.cfg.Model, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &domain.EmbeddingError{Model: c.cfg.Model, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.EmbeddingError{Model: c.cfg.Model, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.EmbeddingError{Model: c.cfg.Model, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.EmbeddingError{
			Model: c.cfg.Model,
			Err:   fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, &domain.EmbeddingError{
			Model: c.cfg.Model,
			Err:   fmt.Errorf("unparseable response (body: %s): %w", truncate(body, 200), err),
		}
	}
	if embResp.Error != nil {
		return nil, &domain.EmbeddingError{
			Model: c.cfg.Model,
			Err:   fmt.Errorf("provider error: %s", embResp.Error.Message),
		}
	}
	if len(embResp.Data) != len(texts) {
		return nil, &domain.EmbeddingError{
			Model: c.cfg.Model,
			Err:   fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Data)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, &domain.EmbeddingError{
				Model: c.cfg.Model,
				Err:   fmt.Errorf("embedding index %d out of range", data.Index),
			}
		}
		if len(data.Embedding) != c.cfg.Dimension {
			return nil, &domain.EmbeddingError{
				Model: c.cfg.Model,
				Err:   fmt.Errorf("dimension mismatch: expected %d, got %d", c.cfg.Dimension, len(data.Embedding)),
			}
		}
		vectors[data.Index] = data.Embedding
	}

	// A repeated index would leave another slot unfilled; catch it here
	// instead of letting a nil vector reach the store.
	for i, v := range vectors {
		if v == nil {
			return nil, &domain.EmbeddingError{
				Model: c.cfg.Model,
				Err:   fmt.Errorf("no embedding returned for input %d", i),
			}
		}
	}

	if c.cfg.Normalize {
		for _, v := range vectors {
			normalize(v)
		}
	}

	return vectors, nil
}

func (c *Client) Dimension() int { return c.cfg.Dimension }

func (c *Client) ModelID() string { return c.cfg.Model }

func (c *Client) Normalized() bool { return c.cfg.Normalize }

// normalize scales the vector to unit L2 norm in place. Zero vectors are
// left untouched.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
