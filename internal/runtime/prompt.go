package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/scrumhand/scrumhand/pkg/domain"
)

// BuildSystemPrompt renders the fixed system instruction prepended to every
// model call: the agent's behavioral guidance, today's date, and the tool
// catalogue so the model knows what it can call.
func BuildSystemPrompt(guidance string, tools []domain.Tool, now time.Time) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(guidance))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Today's date is %s.\n", now.Format("January 2, 2006"))
	b.WriteString("\nNOTE: THE USER CAN'T SEE THE TOOL RESPONSE.\n")

	if len(tools) > 0 {
		b.WriteString("\nAVAILABLE FUNCTIONS:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		}
	}

	return b.String()
}
