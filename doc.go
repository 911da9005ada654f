/*
Package scrumhand is a safety-gated, tool-calling assistant runtime for agile
project trackers (JIRA and Azure DevOps).

It implements a phased turn controller that screens user input with a safety
classifier, lets a language model draft replies and request tool calls,
executes those calls against the tracker's REST API, and screens the final
reply before it is committed to the session transcript.

# Concept

Each conversational turn is a small state machine: guard the input, ask the
model, run any requested tools, feed the results back, and guard the output.
The controller is pure orchestration. Storage, model providers, and safety
classification live behind ports, so the same runtime serves a CLI, an HTTP
API, or an MCP server unchanged.

# Key Features

  - Safety gating: user input and model output both pass a classifier; flagged
    content replaces the reply and ends the turn.
  - Step budgets: every session carries a budget of model calls, so runaway
    tool loops degrade into a polite refusal instead of an infinite spin.
  - Pluggable persistence: in-memory, flat-file, and Redis session stores, with
    optional at-rest encryption and per-session locking.
  - Multiple agents: a JIRA assistant and an Azure DevOps assistant share one
    runtime, each with its own tool registry and guidance.

# Usage

Wire a model client, a safety guard, an agent catalogue and a session manager
into a Service, then drive it one turn at a time.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/scrumhand/scrumhand"
		"github.com/scrumhand/scrumhand/internal/jira"
		"github.com/scrumhand/scrumhand/internal/llm"
		"github.com/scrumhand/scrumhand/internal/safety"
		"github.com/scrumhand/scrumhand/internal/tools"
		"github.com/scrumhand/scrumhand/pkg/adapters/memory"
		"github.com/scrumhand/scrumhand/pkg/session"
	)

	func main() {
		ctx := context.Background()

		model, err := llm.New(ctx, "openai", "gpt-4o-mini")
		if err != nil {
			log.Fatal(err)
		}

		tracker, err := jira.NewClient(jira.Config{
			BaseURL:  "https://example.atlassian.net",
			Email:    "bot@example.com",
			APIToken: "token",
		})
		if err != nil {
			log.Fatal(err)
		}

		agents, err := tools.NewCatalogue(tracker, nil)
		if err != nil {
			log.Fatal(err)
		}

		sessions := session.NewManager(memory.NewStore())

		service, err := scrumhand.NewService(model, safety.NewGuard(model), agents, sessions)
		if err != nil {
			log.Fatal(err)
		}

		messages, err := service.Turn(ctx, "", "session-123", "What is on the current sprint?", 0)
		if err != nil {
			log.Fatal(err)
		}
		for _, msg := range messages {
			fmt.Println(msg.Role, msg.Content)
		}
	}
*/
package scrumhand
