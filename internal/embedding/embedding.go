package embedding

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Embedder encodes text batches into fixed-dimension vectors. Implementations
// must be safe for concurrent use; batching to bound request size is the
// implementation's responsibility.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
	Model() string
}

// Cosine returns the cosine similarity between two vectors. Zero vectors and
// mismatched lengths yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}

	return floats.Dot(a, b) / (na * nb)
}

// CosineAgainstRows computes the cosine similarity of v against every row of m,
// in row order.
func CosineAgainstRows(v []float64, m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sims := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sims[i] = Cosine(v, m.RawRowView(i))
	}
	return sims
}

// Matrix packs row vectors into a dense matrix. All vectors must share the
// same length; rows of unexpected length are reported via ok=false.
func Matrix(vectors [][]float64) (*mat.Dense, bool) {
	if len(vectors) == 0 {
		return nil, false
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, false
	}

	data := make([]float64, 0, len(vectors)*dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, false
		}
		data = append(data, vec...)
	}

	return mat.NewDense(len(vectors), dim, data), true
}

// Normalize returns the L2-normalized copy of vec. A zero vector is returned
// unchanged.
func Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	result := make([]float64, len(vec))
	for i, v := range vec {
		result[i] = v / norm
	}

	return result
}
