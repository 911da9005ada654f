// Package safety implements the content-safety classifier gate.
//
// The classifier is itself a language model invocation: the conversation is
// rendered into a moderation prompt with a fixed category taxonomy, and the
// model's categorical reply ("safe", or "unsafe" plus violated category
// codes) is parsed into a verdict. The guard holds no state and never
// touches conversation history, so it can run twice per turn.
package safety

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scrumhand/scrumhand/internal/logging"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/ports"
)

// categoryNames maps taxonomy codes to the human-readable labels used in
// flagged messages.
var categoryNames = map[string]string{
	"S1":  "Violent Crimes",
	"S2":  "Non-Violent Crimes",
	"S3":  "Sex Crimes",
	"S4":  "Child Exploitation",
	"S5":  "Defamation",
	"S6":  "Specialized Advice",
	"S7":  "Privacy",
	"S8":  "Intellectual Property",
	"S9":  "Indiscriminate Weapons",
	"S10": "Hate",
	"S11": "Self-Harm",
	"S12": "Sexual Content",
	"S13": "Elections",
	"S14": "Code Interpreter Abuse",
}

// categoryOrder keeps the taxonomy stable in the rendered prompt.
var categoryOrder = []string{
	"S1", "S2", "S3", "S4", "S5", "S6", "S7",
	"S8", "S9", "S10", "S11", "S12", "S13", "S14",
}

// Guard implements ports.SafetyClassifier over a moderation model.
type Guard struct {
	model  ports.ModelClient
	logger *slog.Logger
}

// Option configures the Guard.
type Option func(*Guard)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard creates a classifier backed by the given model.
// The model is typically a small, cheap deployment separate from the main
// assistant model.
func NewGuard(model ports.ModelClient, opts ...Option) *Guard {
	g := &Guard{
		model:  model,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ ports.SafetyClassifier = (*Guard)(nil)

// Classify checks the conversation for unsafe content on the given side.
//
// A reply the parser cannot understand is a classifier failure, not a
// verdict: it propagates as an error and the caller aborts the turn.
func (g *Guard) Classify(ctx context.Context, role domain.Role, msgs []domain.Message) (domain.SafetyVerdict, error) {
	prompt := buildPrompt(role, msgs)

	reply, err := g.model.Complete(ctx, "", []domain.Message{domain.NewUserMessage(prompt)}, nil)
	if err != nil {
		return domain.SafetyVerdict{}, fmt.Errorf("moderation model call failed: %w", err)
	}

	verdict, err := parseVerdict(reply.Content)
	if err != nil {
		return domain.SafetyVerdict{}, err
	}

	g.logger.Debug("safety check completed",
		"role", role,
		"assessment", verdict.Assessment,
		"categories", verdict.UnsafeCategories,
	)
	return verdict, nil
}

// roleLabel maps the internal role to the label the moderation prompt uses.
func roleLabel(role domain.Role) string {
	if role == domain.RoleAssistant {
		return "Agent"
	}
	return "User"
}

func buildPrompt(role domain.Role, msgs []domain.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: Check if there is unsafe content in '%s' messages in conversations according to our safety policy with the below categories.\n\n", roleLabel(role))

	b.WriteString("<BEGIN UNSAFE CONTENT CATEGORIES>\n")
	for _, code := range categoryOrder {
		fmt.Fprintf(&b, "%s: %s.\n", code, categoryNames[code])
	}
	b.WriteString("<END UNSAFE CONTENT CATEGORIES>\n\n")

	b.WriteString("<BEGIN CONVERSATION>\n\n")
	for _, m := range msgs {
		// Tool results are internal plumbing; the moderation taxonomy
		// applies to what the user and the agent actually say.
		switch m.Role {
		case domain.RoleUser:
			fmt.Fprintf(&b, "User: %s\n\n", m.Content)
		case domain.RoleAssistant:
			if m.Content != "" {
				fmt.Fprintf(&b, "Agent: %s\n\n", m.Content)
			}
		}
	}
	b.WriteString("<END CONVERSATION>\n\n")

	fmt.Fprintf(&b, "Provide your safety assessment for ONLY THE LAST %s message in the above conversation:\n", roleLabel(role))
	b.WriteString("- First line must read 'safe' or 'unsafe'.\n")
	b.WriteString("- If unsafe, a second line must include a comma-separated list of violated categories.")

	return b.String()
}

func parseVerdict(reply string) (domain.SafetyVerdict, error) {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	switch strings.ToLower(strings.TrimSpace(lines[0])) {
	case "safe":
		return domain.SafetyVerdict{Assessment: domain.AssessmentSafe}, nil
	case "unsafe":
		var categories []string
		if len(lines) > 1 {
			for _, code := range strings.Split(lines[1], ",") {
				code = strings.TrimSpace(code)
				if code == "" {
					continue
				}
				if name, ok := categoryNames[code]; ok {
					categories = append(categories, name)
				} else {
					categories = append(categories, code)
				}
			}
		}
		return domain.SafetyVerdict{
			Assessment:       domain.AssessmentUnsafe,
			UnsafeCategories: categories,
		}, nil
	default:
		return domain.SafetyVerdict{}, fmt.Errorf("unexpected moderation reply: %q", reply)
	}
}
