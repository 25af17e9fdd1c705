package repository

import "context"

// CompletionRepository defines the hosted LLM completion service.
type CompletionRepository interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
}
