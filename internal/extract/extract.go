// Package extract turns free-form job or CV text into raw skill phrases by
// prompting a generative model for a comma-separated summary.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/empmatch/empmatch/internal/ai"
	"github.com/empmatch/empmatch/internal/logger"
)

// Source selects the prompt template used for extraction.
type Source string

const (
	SourceJob Source = "job"
	SourceCV  Source = "cv"
)

//go:embed prompt_job.md
var jobPromptTemplate string

//go:embed prompt_cv.md
var cvPromptTemplate string

const defaultMaxLogLength = 200

type Extractor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func New(generator ai.Generator, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Phrases prompts the generator for a comma-separated skill list and parses
// it into trimmed, deduplicated phrases. Generator failures and empty
// responses degrade to an empty list.
func (e *Extractor) Phrases(ctx context.Context, source Source, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	prompt := buildPrompt(source, text)

	e.logger.Debug("skill extraction request",
		zap.String("source", string(source)),
		zap.String("model", e.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("skill extraction failed, continuing with no phrases",
			zap.String("source", string(source)),
			zap.Error(err),
		)
		return []string{}
	}

	e.logger.Debug("skill extraction response",
		zap.String("source", string(source)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	phrases := splitPhrases(raw)

	e.logger.Info("extracted skill phrases",
		zap.String("source", string(source)),
		zap.Int("count", len(phrases)),
	)

	return phrases
}

func buildPrompt(source Source, text string) string {
	template := jobPromptTemplate
	if source == SourceCV {
		template = cvPromptTemplate
	}
	if strings.TrimSpace(template) == "" {
		template = "Return a comma-separated list of skills:\n{{TEXT}}"
	}
	return strings.ReplaceAll(template, "{{TEXT}}", text)
}

func splitPhrases(raw string) []string {
	seen := make(map[string]struct{})
	phrases := []string{}
	for _, part := range strings.Split(raw, ",") {
		phrase := strings.TrimSpace(part)
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}
	return phrases
}
