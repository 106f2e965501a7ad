package skills

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type countingEmbedder struct {
	*stubEmbedder
	calls int
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	c.calls++
	return c.stubEmbedder.EmbedBatch(ctx, texts)
}

func TestEngineReadyBuildsOnce(t *testing.T) {
	embedder := &countingEmbedder{stubEmbedder: &stubEmbedder{dim: 4, vectors: taxonomyVectors()}}
	cachePath := filepath.Join(t.TempDir(), "taxonomy.npy")
	engine := NewEngine(testTaxonomy, embedder, cachePath, zap.NewNop())

	if err := engine.Ready(context.Background()); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
	if err := engine.Ready(context.Background()); err != nil {
		t.Fatalf("unexpected init error on repeat: %v", err)
	}

	if embedder.calls != 1 {
		t.Fatalf("expected a single taxonomy embed, got %d", embedder.calls)
	}
}

func TestEngineReadyStickyError(t *testing.T) {
	wantErr := errors.New("backend down")
	embedder := &stubEmbedder{dim: 4, err: wantErr}
	cachePath := filepath.Join(t.TempDir(), "taxonomy.npy")
	engine := NewEngine(testTaxonomy, embedder, cachePath, zap.NewNop())

	if err := engine.Ready(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped init error, got %v", err)
	}

	// The embedder recovers, but the engine keeps its first outcome.
	embedder.err = nil
	if err := engine.Ready(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected sticky init error, got %v", err)
	}
}

func TestEngineStandardize(t *testing.T) {
	vectors := taxonomyVectors()
	vectors["Python"] = []float64{0.9, 0.1, 0, 0}
	embedder := &stubEmbedder{dim: 4, vectors: vectors}
	cachePath := filepath.Join(t.TempDir(), "taxonomy.npy")
	engine := NewEngine(testTaxonomy, embedder, cachePath, zap.NewNop())

	result, err := engine.Standardize(context.Background(), []string{"Python"}, JobExtraction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Standardized) != 1 || result.Standardized[0] != "Python programming" {
		t.Fatalf("unexpected standardization: %+v", result)
	}
}

func TestEngineStandardizeFailedInit(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, err: errors.New("backend down")}
	cachePath := filepath.Join(t.TempDir(), "taxonomy.npy")
	engine := NewEngine(testTaxonomy, embedder, cachePath, zap.NewNop())

	if _, err := engine.Standardize(context.Background(), []string{"Python"}, JobExtraction); err == nil {
		t.Fatal("expected error from failed init")
	}
}

func TestEngineTaxonomy(t *testing.T) {
	engine := NewEngine(testTaxonomy, &stubEmbedder{dim: 4}, "", zap.NewNop())

	got := engine.Taxonomy()
	if len(got) != len(testTaxonomy) {
		t.Fatalf("unexpected taxonomy size: %d", len(got))
	}
	if got[0].Skill != testTaxonomy[0].Skill {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
}
