package ports

import (
	"context"

	"github.com/scrumhand/scrumhand/pkg/domain"
)

// SafetyClassifier checks a message history for unsafe content.
//
// The role argument selects which side of the conversation is under review:
// domain.RoleUser for inbound checks, domain.RoleAssistant for drafts the
// model produced. Classify must be side-effect free with respect to the
// history and callable multiple times per turn.
type SafetyClassifier interface {
	Classify(ctx context.Context, role domain.Role, msgs []domain.Message) (domain.SafetyVerdict, error)
}
