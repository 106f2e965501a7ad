package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/empmatch/empmatch/internal/logger"
	"github.com/empmatch/empmatch/internal/utils"
)

const (
	defaultModel          = "gemini-1.5-flash"
	defaultMaxLogLength   = 200
	defaultRequestTimeout = 30 * time.Second
	retryDelay            = 2 * time.Second

	// Generation settings for skill summaries, kept short on purpose: the
	// model is asked for a comma-separated list, not prose.
	summaryTemperature     = 0.7
	summaryMaxOutputTokens = 70
)

// NewClient creates the underlying genai client for the Gemini API backend.
// A failure here is fatal to engine startup.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

// GeneratorConfig tunes the content generator.
type GeneratorConfig struct {
	Model          string
	MaxRetries     int
	MaxLogLength   int
	RequestTimeout time.Duration
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	modelName  string
	maxRetries int
	maxLogLen  int
	timeout    time.Duration
	logger     *zap.Logger

	generate func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
}

// NewGenerator creates a Generator on top of an initialized genai client.
func NewGenerator(client *genai.Client, cfg GeneratorConfig, log *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	g := &Generator{
		modelName:  model,
		maxRetries: cfg.MaxRetries,
		maxLogLen:  maxLogLen,
		timeout:    timeout,
		logger:     logger.WithCommonFields(log, "gemini", model),
	}

	g.generate = func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		config := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](summaryTemperature),
			MaxOutputTokens: summaryMaxOutputTokens,
		}
		return client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	}

	return g
}

// GenerateContent sends the prompt to Gemini and returns the first textual
// response. Failed calls are retried up to MaxRetries times with a ctx-aware
// delay between attempts.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.generate == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Debug("retrying gemini request",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, retryDelay); err != nil {
				return "", err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.generate(callCtx, prompt)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		output := extractText(resp)
		if output == "" {
			lastErr = errors.New("gemini api returned empty response")
			continue
		}

		g.logger.Debug("gemini generate content response",
			zap.Int("response_length", utf8.RuneCountInString(output)),
			zap.String("response_preview", logger.TruncateForLog(output, g.maxLogLen)),
		)

		return output, nil
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// extractText concatenates the textual parts of every candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
