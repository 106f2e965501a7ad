package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/empmatch/empmatch/internal/embedding"
	"github.com/empmatch/empmatch/internal/logger"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	defaultDimension      = 384

	// The Gemini API caps the number of contents per embed request.
	embedBatchSize = 100
)

var _ embedding.Embedder = (*Embedder)(nil)

// EmbedderConfig tunes the embedding provider.
type EmbedderConfig struct {
	Model          string
	Dimension      int
	RequestTimeout time.Duration
}

// Embedder encodes text batches through the Gemini embedding API. The genai
// client is a stateless HTTP client, so concurrent EmbedBatch calls are safe
// without additional locking.
type Embedder struct {
	modelName string
	dimension int
	timeout   time.Duration
	logger    *zap.Logger

	embed func(ctx context.Context, texts []string) ([][]float64, error)
}

// NewEmbedder creates an Embedder on top of an initialized genai client.
func NewEmbedder(client *genai.Client, cfg EmbedderConfig, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultEmbeddingModel
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = defaultDimension
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	e := &Embedder{
		modelName: model,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger.WithEmbedderFields(log, "gemini", model),
	}

	e.embed = func(ctx context.Context, texts []string) ([][]float64, error) {
		contents := make([]*genai.Content, len(texts))
		for i, text := range texts {
			contents[i] = &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			}
		}

		config := &genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(dimension)),
		}

		resp, err := client.Models.EmbedContent(ctx, model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != len(texts) {
			return nil, fmt.Errorf("embed content: expected %d embeddings, got %d", len(texts), embeddingCount(resp))
		}

		vectors := make([][]float64, len(resp.Embeddings))
		for i, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, fmt.Errorf("embed content: empty embedding at index %d", i)
			}
			vectors[i] = toFloat64(emb.Values)
		}

		return vectors, nil
	}

	return e
}

// EmbedBatch encodes the texts in request-sized batches, one vector per input
// in input order. Vectors are L2-normalized: truncated-dimensionality Gemini
// embeddings are not normalized by the API. Any batch failure fails the whole
// call; the caller treats that as "no embeddings available".
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if e == nil || e.embed == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		batch, err := e.embed(callCtx, texts[start:end])
		cancel()
		if err != nil {
			e.logger.Warn("embedding batch failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)
			return nil, err
		}

		for _, vec := range batch {
			vectors = append(vectors, embedding.Normalize(vec))
		}
	}

	e.logger.Debug("embedded texts",
		zap.Int("count", len(vectors)),
		zap.Int("dimension", e.dimension),
	)

	return vectors, nil
}

func (e *Embedder) Dimension() int {
	if e == nil {
		return 0
	}
	return e.dimension
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.modelName
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func embeddingCount(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
