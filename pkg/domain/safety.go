package domain

import "strings"

// SafetyAssessment is the binary outcome of a content-safety check.
type SafetyAssessment string

const (
	AssessmentSafe   SafetyAssessment = "safe"
	AssessmentUnsafe SafetyAssessment = "unsafe"
)

// SafetyVerdict is produced fresh for each classifier check.
// It is stored on the state only to decide routing for the current turn.
type SafetyVerdict struct {
	Assessment       SafetyAssessment `json:"assessment"`
	UnsafeCategories []string         `json:"unsafe_categories,omitempty"`
}

// Unsafe reports whether the verdict blocks further processing.
func (v SafetyVerdict) Unsafe() bool {
	return v.Assessment == AssessmentUnsafe
}

// FlaggedContent renders the user-visible message for a blocked conversation.
func (v SafetyVerdict) FlaggedContent() string {
	return "This conversation was flagged for unsafe content: " + strings.Join(v.UnsafeCategories, ", ")
}
