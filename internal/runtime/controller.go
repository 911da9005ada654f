package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scrumhand/scrumhand/internal/logging"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/ports"
	"github.com/scrumhand/scrumhand/pkg/registry"
)

// Phase identifies a state of the turn-processing machine.
type Phase string

const (
	PhaseGuardInput  Phase = "guard_input"
	PhaseModel       Phase = "model"
	PhaseTools       Phase = "tools"
	PhaseBlockUnsafe Phase = "block_unsafe_content"
	PhaseDone        Phase = "done"
)

// NeedMoreStepsContent is the synthesized reply when the step budget is too
// low to dispatch the tools the model asked for.
const NeedMoreStepsContent = "Sorry, need more steps to process this request."

// minStepsForTools is the remaining-step threshold below which tool dispatch
// is refused. The check runs before dispatch, so a budget of 1 never starts
// a tool round it could not finish.
const minStepsForTools = 2

// Controller runs the safety-gated, tool-calling turn machine:
//
//	guard_input -> model <-> tools
//	     \-> block_unsafe_content
//
// Each transition appends to the conversation transcript; history is never
// mutated or reordered. A turn either completes to done or fails with an
// error from a model/classifier call, in which case the state is unchanged
// beyond what was already appended.
type Controller struct {
	model      ports.ModelClient
	classifier ports.SafetyClassifier
	tools      *registry.Registry
	guidance   string

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures the Controller.
type Option func(*Controller)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLogger sets a structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the time source (used by tests for a stable prompt).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// NewController wires a controller for one agent definition.
func NewController(model ports.ModelClient, classifier ports.SafetyClassifier, tools *registry.Registry, guidance string, opts ...Option) *Controller {
	c := &Controller{
		model:      model,
		classifier: classifier,
		tools:      tools,
		guidance:   guidance,
		logger:     logging.NewNop(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turn processes a single new user message against the session state.
//
// The state is mutated in place: the user message and every message the
// machine produces are appended, the step counter is decremented once per
// tool round, and the safety verdict is overwritten by each check. The
// returned slice holds the messages appended after the user message, the
// turn's user-visible output.
func (c *Controller) Turn(ctx context.Context, sessionID string, state *domain.ConversationState, userText string) ([]domain.Message, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, domain.ErrEmptyMessage
	}

	state.Append(domain.NewUserMessage(userText))
	mark := len(state.Messages)

	phase := PhaseGuardInput
	for phase != PhaseDone {
		c.emitPhase(ctx, sessionID, phase)

		var err error
		switch phase {
		case PhaseGuardInput:
			phase, err = c.guardInput(ctx, sessionID, state)
		case PhaseModel:
			phase, err = c.callModel(ctx, sessionID, state)
		case PhaseTools:
			phase, err = c.runTools(ctx, sessionID, state)
		case PhaseBlockUnsafe:
			state.Append(domain.NewAssistantMessage(state.Safety.FlaggedContent()))
			phase = PhaseDone
		default:
			return nil, fmt.Errorf("controller reached invalid phase %q", phase)
		}
		if err != nil {
			return nil, err
		}
	}

	return state.Messages[mark:], nil
}

// guardInput classifies the inbound history. No message is appended here;
// the verdict only decides routing.
func (c *Controller) guardInput(ctx context.Context, sessionID string, state *domain.ConversationState) (Phase, error) {
	verdict, err := c.classifier.Classify(ctx, domain.RoleUser, state.Messages)
	if err != nil {
		return PhaseDone, fmt.Errorf("input safety check failed: %w", err)
	}
	state.Safety = verdict
	c.emitSafety(ctx, sessionID, domain.RoleUser, verdict)

	if verdict.Unsafe() {
		c.logger.Warn("input flagged as unsafe",
			"session_id", sessionID,
			"categories", verdict.UnsafeCategories,
		)
		return PhaseBlockUnsafe, nil
	}
	return PhaseModel, nil
}

// callModel invokes the model bound to the tool catalogue, then re-checks
// the draft before anything is shown or dispatched.
func (c *Controller) callModel(ctx context.Context, sessionID string, state *domain.ConversationState) (Phase, error) {
	system := BuildSystemPrompt(c.guidance, c.tools.Tools(), c.clock())

	draft, err := c.model.Complete(ctx, system, state.Messages, c.tools.Tools())
	if err != nil {
		return PhaseDone, fmt.Errorf("model call failed: %w", err)
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.Role = domain.RoleAssistant

	// Output-side check over history + draft, before the draft is committed.
	preview := append(append([]domain.Message{}, state.Messages...), *draft)
	verdict, err := c.classifier.Classify(ctx, domain.RoleAssistant, preview)
	if err != nil {
		return PhaseDone, fmt.Errorf("output safety check failed: %w", err)
	}
	state.Safety = verdict
	c.emitSafety(ctx, sessionID, domain.RoleAssistant, verdict)

	if verdict.Unsafe() {
		c.logger.Warn("model draft flagged as unsafe, discarding",
			"session_id", sessionID,
			"categories", verdict.UnsafeCategories,
		)
		state.Append(domain.NewAssistantMessage(verdict.FlaggedContent()))
		return PhaseDone, nil
	}

	if len(draft.ToolCalls) == 0 {
		state.Append(*draft)
		return PhaseDone, nil
	}

	if state.RemainingSteps < minStepsForTools {
		c.logger.Info("step budget exhausted, refusing tool dispatch",
			"session_id", sessionID,
			"remaining_steps", state.RemainingSteps,
			"requested_tools", len(draft.ToolCalls),
		)
		state.Append(domain.Message{ID: draft.ID, Role: domain.RoleAssistant, Content: NeedMoreStepsContent})
		return PhaseDone, nil
	}

	state.Append(*draft)
	return PhaseTools, nil
}

// runTools dispatches the pending calls of the just-appended assistant
// message sequentially, in request order, appending one tool message each.
func (c *Controller) runTools(ctx context.Context, sessionID string, state *domain.ConversationState) (Phase, error) {
	last, ok := state.LastMessage()
	if !ok || last.Role != domain.RoleAssistant {
		return PhaseDone, fmt.Errorf("tools phase expects a pending assistant message")
	}

	for _, call := range last.ToolCalls {
		c.emitToolCall(ctx, sessionID, call)
		started := c.clock()

		outcome := c.tools.Dispatch(ctx, call)

		c.emitToolReturn(ctx, sessionID, call, outcome.Err != nil, c.clock().Sub(started))
		if outcome.Err != nil {
			c.logger.Debug("tool returned error text",
				"session_id", sessionID,
				"tool", call.Name,
				"err", outcome.Err,
			)
		}
		state.Append(domain.NewToolMessage(call.ID, outcome.Text()))
	}

	state.ConsumeStep()
	return PhaseModel, nil
}

func (c *Controller) emitPhase(ctx context.Context, sessionID string, phase Phase) {
	if c.hooks.OnPhaseEnter == nil {
		return
	}
	c.hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: c.clock(), Type: domain.EventPhaseEnter, SessionID: sessionID},
		Phase:     string(phase),
	})
}

func (c *Controller) emitSafety(ctx context.Context, sessionID string, role domain.Role, verdict domain.SafetyVerdict) {
	if c.hooks.OnSafetyVerdict == nil {
		return
	}
	c.hooks.OnSafetyVerdict(ctx, &domain.SafetyEvent{
		EventBase: domain.EventBase{Timestamp: c.clock(), Type: domain.EventSafetyVerdict, SessionID: sessionID},
		Role:      role,
		Verdict:   verdict,
	})
}

func (c *Controller) emitToolCall(ctx context.Context, sessionID string, call domain.ToolCall) {
	if c.hooks.OnToolCall == nil {
		return
	}
	c.hooks.OnToolCall(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: c.clock(), Type: domain.EventToolCall, SessionID: sessionID},
		ToolName:  call.Name,
		CallID:    call.ID,
	})
}

func (c *Controller) emitToolReturn(ctx context.Context, sessionID string, call domain.ToolCall, isErr bool, elapsed time.Duration) {
	if c.hooks.OnToolReturn == nil {
		return
	}
	c.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: c.clock(), Type: domain.EventToolReturn, SessionID: sessionID},
		ToolName:  call.Name,
		CallID:    call.ID,
		IsError:   isErr,
		Elapsed:   elapsed,
	})
}
