package skills

import (
	"context"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/empmatch/empmatch/internal/embedding"
	"github.com/empmatch/empmatch/internal/taxonomy"
)

// Standardizer resolves raw skill phrases onto canonical taxonomy entries.
// It is read-only after construction and safe for concurrent use.
type Standardizer struct {
	entries  []taxonomy.Entry
	names    []string
	matrix   *mat.Dense
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewStandardizer wires the taxonomy, its precomputed embedding matrix and the
// embedding provider. The matrix row order must match the entries order.
func NewStandardizer(entries []taxonomy.Entry, matrix *mat.Dense, embedder embedding.Embedder, logger *zap.Logger) *Standardizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Standardizer{
		entries:  entries,
		names:    taxonomy.Names(entries),
		matrix:   matrix,
		embedder: embedder,
		logger:   logger,
	}
}

// Standardize maps each raw phrase onto at most one taxonomy entry. Phrases
// are trimmed, blank entries dropped and exact duplicates removed before
// resolution. When the embedding provider fails the standardized set is empty
// and the raw set is still returned; extraction is best-effort enrichment.
func (s *Standardizer) Standardize(ctx context.Context, rawPhrases []string, th Thresholds) Result {
	phrases := make([]string, 0, len(rawPhrases))
	for _, phrase := range rawPhrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		phrases = append(phrases, phrase)
	}
	phrases = dedupe(phrases)

	if len(phrases) == 0 {
		return Result{Standardized: []string{}, Raw: []string{}}
	}

	vectors, err := s.embedder.EmbedBatch(ctx, phrases)
	if err != nil || len(vectors) != len(phrases) {
		s.logger.Warn("embedding raw phrases failed, skipping standardization",
			zap.Int("phrases", len(phrases)),
			zap.Error(err),
		)
		return Result{Standardized: []string{}, Raw: phrases}
	}

	standardized := make([]string, 0, len(phrases))
	for i, phrase := range phrases {
		name, ok := s.resolve(phrase, vectors[i], th)
		if !ok {
			continue
		}
		standardized = append(standardized, name)
	}

	resolved := dedupe(standardized)

	s.logger.Info("standardized skills",
		zap.Int("raw", len(phrases)),
		zap.Int("resolved", len(resolved)),
		zap.Int("dropped", len(phrases)-len(standardized)),
	)

	return Result{Standardized: resolved, Raw: phrases}
}

// resolve runs the two-stage pipeline for a single phrase. The embedding
// stage wins whenever its best score reaches the similarity threshold
// (inclusive); the fuzzy stage runs only when it does not.
func (s *Standardizer) resolve(phrase string, vector []float64, th Thresholds) (string, bool) {
	sims := embedding.CosineAgainstRows(vector, s.matrix)
	best, score := argmax(sims)
	if best < 0 {
		return "", false
	}

	s.logger.Debug("embedding stage",
		zap.String("phrase", phrase),
		zap.String("best_match", s.names[best]),
		zap.Float64("similarity", score),
	)

	if score >= th.Similarity {
		return s.names[best], true
	}

	// Fuzzy fallback: best weighted-ratio hit across all taxonomy names.
	fuzzyBest, fuzzyScore := -1, 0
	for i, name := range s.names {
		if r := fuzzy.WRatio(phrase, name); r > fuzzyScore {
			fuzzyBest, fuzzyScore = i, r
		}
	}

	if fuzzyBest >= 0 && fuzzyScore >= th.Fuzzy {
		s.logger.Debug("fuzzy stage",
			zap.String("phrase", phrase),
			zap.String("best_match", s.names[fuzzyBest]),
			zap.Int("fuzzy_score", fuzzyScore),
		)
		return s.names[fuzzyBest], true
	}

	return "", false
}

// argmax returns the index and value of the first maximum.
func argmax(values []float64) (int, float64) {
	if len(values) == 0 {
		return -1, 0
	}

	best, score := 0, values[0]
	for i, v := range values[1:] {
		if v > score {
			best, score = i+1, v
		}
	}
	return best, score
}
