// Package domain contains the core entities of the assistant: conversation
// messages, session state, safety verdicts and tool contracts.
//
// The domain layer is dependency-free (besides ID generation) and is shared
// by the runtime controller and every adapter.
package domain
