package domain

// DefaultStepBudget is the remaining-step counter assigned to new sessions
// when the caller does not supply one.
const DefaultStepBudget = 10

// ConversationState is the checkpointed snapshot of one session.
//
// Messages is append-only: a turn may add messages but never mutates or
// reorders history. RemainingSteps is monotonically non-increasing within a
// session and gates tool dispatch. Safety holds the most recent verdict and
// is overwritten on every check.
type ConversationState struct {
	Messages       []Message     `json:"messages"`
	RemainingSteps int           `json:"remaining_steps"`
	Safety         SafetyVerdict `json:"safety"`
}

// NewState creates an empty conversation with the given step budget.
// A non-positive budget falls back to DefaultStepBudget.
func NewState(stepBudget int) *ConversationState {
	if stepBudget <= 0 {
		stepBudget = DefaultStepBudget
	}
	return &ConversationState{
		Messages:       []Message{},
		RemainingSteps: stepBudget,
		Safety:         SafetyVerdict{Assessment: AssessmentSafe},
	}
}

// Append adds messages to the transcript.
func (s *ConversationState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// ConsumeStep decrements the remaining-step counter, clamping at zero.
func (s *ConversationState) ConsumeStep() {
	if s.RemainingSteps > 0 {
		s.RemainingSteps--
	}
}

// LastMessage returns the most recent message, or false for an empty transcript.
func (s *ConversationState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a deep copy so stores and callers cannot alias the transcript.
func (s *ConversationState) Clone() *ConversationState {
	cp := &ConversationState{
		Messages:       make([]Message, len(s.Messages)),
		RemainingSteps: s.RemainingSteps,
		Safety:         s.Safety,
	}
	copy(cp.Messages, s.Messages)
	for i, m := range cp.Messages {
		if len(m.ToolCalls) > 0 {
			calls := make([]ToolCall, len(m.ToolCalls))
			copy(calls, m.ToolCalls)
			cp.Messages[i].ToolCalls = calls
		}
	}
	cp.Safety.UnsafeCategories = append([]string(nil), s.Safety.UnsafeCategories...)
	return cp
}
