package repository

import (
	"context"
)

// LLMClient defines the interface for generating text from a prompt.
// Implementations are expected to return raw JSON text when asked for a
// structured response; parsing and validation belong to the caller.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
