// Package llm provides ModelClient adapters for the supported providers.
//
// Each adapter converts between the domain message/tool types and the
// provider's wire format. Credentials come from environment variables so
// they never land in config files.
package llm

import (
	"context"
	"fmt"

	"github.com/scrumhand/scrumhand/pkg/ports"
)

// Provider identifiers accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// New creates a ModelClient for the given provider and model name.
func New(ctx context.Context, provider, model string) (ports.ModelClient, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(ctx, model)
	case ProviderOpenAI:
		return NewOpenAIClient(ctx, model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", provider)
	}
}
