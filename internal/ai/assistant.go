package ai

import "context"

// Generator produces free-text completions from a generative language model.
// It is the engine's only network-facing collaborator besides the embedder.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
