package cmd

import (
	"context"
	"fmt"

	"github.com/empmatch/empmatch/internal/ai/gemini"
	"github.com/empmatch/empmatch/internal/extract"
	"github.com/empmatch/empmatch/internal/secrets"
	"github.com/empmatch/empmatch/internal/skills"
	"github.com/empmatch/empmatch/internal/taxonomy"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

func resolveAPIKey(cfg *GeminiConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
}

// newGenAIClient builds the shared Gemini client. No key or a broken key file
// is a startup failure.
func newGenAIClient(ctx context.Context, config *Config) (*genai.Client, error) {
	apiKey, err := resolveAPIKey(config.gemini())
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key, gemini.api-key-file or EMPMATCH_GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewClient(ctx, apiKey)
}

func newExtractor(client *genai.Client, config *Config, logger *zap.Logger) *extract.Extractor {
	cfg := config.gemini()

	generator := gemini.NewGenerator(client, gemini.GeneratorConfig{
		Model:        cfg.Model,
		MaxRetries:   cfg.MaxRetries,
		MaxLogLength: cfg.MaxLogLength,
	}, logger)

	return extract.New(generator, logger, cfg.MaxLogLength)
}

func newEmbedder(client *genai.Client, config *Config, logger *zap.Logger) *gemini.Embedder {
	return gemini.NewEmbedder(client, gemini.EmbedderConfig{
		Model: config.gemini().EmbeddingModel,
	}, logger)
}

// newEngine wires taxonomy, embedder and the cache artifact together. The
// embedding matrix is not built here; Engine.Ready does that on first use.
func newEngine(client *genai.Client, config *Config, logger *zap.Logger) *skills.Engine {
	entries := taxonomy.Load(config.taxonomyFile(), logger)
	embedder := newEmbedder(client, config, logger)

	return skills.NewEngine(entries, embedder, config.embeddingsFile(), logger)
}
