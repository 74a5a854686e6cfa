package ai

import "context"

// Client is the upstream AI provider: one prompt in, raw text out.
// Implementations must honor ctx cancellation and deadlines.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
