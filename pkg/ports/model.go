package ports

import (
	"context"

	"github.com/scrumhand/scrumhand/pkg/domain"
)

// ModelClient is the interface for invoking the underlying language model.
//
// Complete sends the system instruction plus the conversation history, bound
// to the given tool catalogue, and returns the model's draft assistant
// message. The draft may carry zero or more pending tool calls.
type ModelClient interface {
	Complete(ctx context.Context, system string, msgs []domain.Message, tools []domain.Tool) (*domain.Message, error)
}
