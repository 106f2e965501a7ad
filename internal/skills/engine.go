package skills

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/empmatch/empmatch/internal/embedding"
	"github.com/empmatch/empmatch/internal/taxonomy"
)

// Engine owns the process-lifetime standardization state: the taxonomy, the
// embedding provider and the taxonomy embedding matrix. The matrix build is
// the most expensive initialization in the system and happens at most once
// per process; concurrent first requests are serialized by sync.Once.
type Engine struct {
	entries   []taxonomy.Entry
	embedder  embedding.Embedder
	cachePath string
	logger    *zap.Logger

	once         sync.Once
	standardizer *Standardizer
	initErr      error
}

// NewEngine creates an engine. No embedding work happens until Ready or the
// first Standardize call.
func NewEngine(entries []taxonomy.Entry, embedder embedding.Embedder, cachePath string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		entries:   entries,
		embedder:  embedder,
		cachePath: cachePath,
		logger:    logger,
	}
}

// Ready loads or builds the taxonomy embedding matrix. It is idempotent and
// safe to call concurrently; an initialization failure is sticky and reported
// on every subsequent call.
func (e *Engine) Ready(ctx context.Context) error {
	e.once.Do(func() {
		matrix, err := embedding.LoadOrBuildMatrix(ctx, e.cachePath, e.entries, e.embedder, e.logger)
		if err != nil {
			e.initErr = err
			return
		}
		e.standardizer = NewStandardizer(e.entries, matrix, e.embedder, e.logger)
	})

	return e.initErr
}

// Standardize resolves raw phrases against the taxonomy, initializing the
// engine on first use. When initialization failed, standardization is
// unavailable and the raw phrases are passed through unresolved.
func (e *Engine) Standardize(ctx context.Context, rawPhrases []string, th Thresholds) (Result, error) {
	if err := e.Ready(ctx); err != nil {
		return Result{}, err
	}
	return e.standardizer.Standardize(ctx, rawPhrases, th), nil
}

// Taxonomy returns the loaded taxonomy entries.
func (e *Engine) Taxonomy() []taxonomy.Entry {
	return e.entries
}
