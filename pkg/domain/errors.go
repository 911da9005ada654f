package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownTool is returned when the model requests a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrUnknownAgent is returned when an agent ID has no definition.
var ErrUnknownAgent = errors.New("unknown agent")

// ErrEmptyMessage is returned when a turn is invoked without user input.
var ErrEmptyMessage = errors.New("empty user message")
