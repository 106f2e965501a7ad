package embedding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/empmatch/empmatch/internal/taxonomy"
)

// LoadOrBuildMatrix returns the taxonomy embedding matrix, one row per entry
// in entry order. A persisted .npy artifact is reused when its row count
// matches the taxonomy; a stale or corrupt artifact is deleted and the matrix
// is rebuilt by embedding every entry, then persisted again. A rebuild failure
// means standardization is unavailable and is returned as an error.
func LoadOrBuildMatrix(ctx context.Context, path string, entries []taxonomy.Entry, embedder Embedder, logger *zap.Logger) (*mat.Dense, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if m := loadMatrix(path, len(entries), logger); m != nil {
		return m, nil
	}

	logger.Info("computing taxonomy embeddings",
		zap.Int("entries", len(entries)),
		zap.String("embedding_model", embedder.Model()),
	)

	vectors, err := embedder.EmbedBatch(ctx, taxonomy.Texts(entries))
	if err != nil {
		return nil, fmt.Errorf("embedding taxonomy entries: %w", err)
	}

	m, ok := Matrix(vectors)
	if !ok || len(vectors) != len(entries) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d taxonomy entries", len(vectors), len(entries))
	}

	if path != "" {
		if err := saveMatrix(path, m); err != nil {
			logger.Warn("persisting taxonomy embeddings failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("persisted taxonomy embeddings", zap.String("path", path))
		}
	}

	return m, nil
}

// loadMatrix reads the persisted artifact. Any problem (missing file, parse
// failure, row count mismatch) returns nil; stale and corrupt artifacts are
// removed so the next build starts clean.
func loadMatrix(path string, wantRows int, logger *zap.Logger) *mat.Dense {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("opening taxonomy embeddings failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		logger.Warn("taxonomy embeddings artifact is corrupt, discarding",
			zap.String("path", path),
			zap.Error(err),
		)
		discard(path, logger)
		return nil
	}

	rows, cols := m.Dims()
	if rows != wantRows || cols == 0 {
		logger.Warn("taxonomy embeddings artifact is stale, discarding",
			zap.String("path", path),
			zap.Int("rows", rows),
			zap.Int("expected_rows", wantRows),
		)
		discard(path, logger)
		return nil
	}

	logger.Info("loaded precomputed taxonomy embeddings",
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("dimension", cols),
	)

	return &m
}

func saveMatrix(path string, m *mat.Dense) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating embeddings directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating embeddings file: %w", err)
	}
	defer f.Close()

	if err := npyio.Write(f, m); err != nil {
		return fmt.Errorf("writing embeddings file: %w", err)
	}

	return nil
}

func discard(path string, logger *zap.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing embeddings artifact failed", zap.String("path", path), zap.Error(err))
	}
}
