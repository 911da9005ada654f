package runtime_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scrumhand/scrumhand/internal/runtime"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel returns queued drafts in order, recording the prompts it saw.
type scriptedModel struct {
	drafts  []domain.Message
	calls   int
	systems []string
	err     error
}

func (m *scriptedModel) Complete(ctx context.Context, system string, msgs []domain.Message, tools []domain.Tool) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.calls >= len(m.drafts) {
		return nil, errors.New("scripted model exhausted")
	}
	m.systems = append(m.systems, system)
	draft := m.drafts[m.calls]
	m.calls++
	return &draft, nil
}

// scriptedClassifier returns queued verdicts in order and is pure:
// classifying the same history twice consumes two identical entries.
type scriptedClassifier struct {
	verdicts []domain.SafetyVerdict
	calls    int
	roles    []domain.Role
	err      error
}

func (c *scriptedClassifier) Classify(ctx context.Context, role domain.Role, msgs []domain.Message) (domain.SafetyVerdict, error) {
	if c.err != nil {
		return domain.SafetyVerdict{}, c.err
	}
	c.roles = append(c.roles, role)
	if c.calls >= len(c.verdicts) {
		return domain.SafetyVerdict{Assessment: domain.AssessmentSafe}, nil
	}
	v := c.verdicts[c.calls]
	c.calls++
	return v, nil
}

func safe() domain.SafetyVerdict {
	return domain.SafetyVerdict{Assessment: domain.AssessmentSafe}
}

func unsafeVerdict(categories ...string) domain.SafetyVerdict {
	return domain.SafetyVerdict{Assessment: domain.AssessmentUnsafe, UnsafeCategories: categories}
}

func projectsRegistry(t *testing.T, invoked *[]string) *registry.Registry {
	t.Helper()
	r, err := registry.New(registry.Entry{
		Tool: domain.Tool{Name: "get_all_projects", Description: "Lists all accessible projects"},
		Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
			if invoked != nil {
				*invoked = append(*invoked, "get_all_projects")
			}
			return domain.TextOutcome(`[{"key":"PROJ","name":"Project One"}]`)
		},
	})
	require.NoError(t, err)
	return r
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 4, 21, 9, 0, 0, 0, time.UTC) }
}

func TestTurn_PlainReply(t *testing.T) {
	model := &scriptedModel{drafts: []domain.Message{
		{Content: "You have 3 projects."},
	}}
	classifier := &scriptedClassifier{verdicts: []domain.SafetyVerdict{safe(), safe()}}
	ctrl := runtime.NewController(model, classifier, projectsRegistry(t, nil), "You are a helpful JIRA assistant.", runtime.WithClock(fixedClock()))

	state := domain.NewState(10)
	out, err := ctrl.Turn(context.Background(), "s1", state, "how many projects do I have?")
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, domain.RoleAssistant, out[0].Role)
	assert.Equal(t, "You have 3 projects.", out[0].Content)

	// Transcript: user + assistant, counter untouched (no tool round ran).
	assert.Len(t, state.Messages, 2)
	assert.Equal(t, 10, state.RemainingSteps)

	// Double check order: input guard first, then the draft check.
	assert.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAssistant}, classifier.roles)

	// The system prompt carries guidance, date and the tool catalogue.
	require.Len(t, model.systems, 1)
	assert.Contains(t, model.systems[0], "JIRA assistant")
	assert.Contains(t, model.systems[0], "April 21, 2025")
	assert.Contains(t, model.systems[0], "get_all_projects")
}

// Scenario A: tool round-trip ending with a text summary.
func TestTurn_ToolRoundTrip(t *testing.T) {
	var invoked []string
	model := &scriptedModel{drafts: []domain.Message{
		{ToolCalls: []domain.ToolCall{{ID: "call-1", Name: "get_all_projects"}}},
		{Content: "You have one project: Project One."},
	}}
	classifier := &scriptedClassifier{}
	ctrl := runtime.NewController(model, classifier, projectsRegistry(t, &invoked), "guidance")

	state := domain.NewState(10)
	out, err := ctrl.Turn(context.Background(), "s1", state, "list all projects")
	require.NoError(t, err)

	assert.Equal(t, []string{"get_all_projects"}, invoked)

	// assistant(tool_calls) -> tool result -> assistant(text)
	require.Len(t, out, 3)
	assert.Equal(t, domain.RoleAssistant, out[0].Role)
	require.Len(t, out[0].ToolCalls, 1)
	assert.Equal(t, domain.RoleTool, out[1].Role)
	assert.Equal(t, "call-1", out[1].ToolCallID)
	assert.Contains(t, out[1].Content, "Project One")
	assert.Equal(t, "You have one project: Project One.", out[2].Content)

	// One tool round consumed one step.
	assert.Equal(t, 9, state.RemainingSteps)
}

func TestTurn_ToolResultsMatchRequestOrder(t *testing.T) {
	var invoked []string
	mkEntry := func(name string) registry.Entry {
		return registry.Entry{
			Tool: domain.Tool{Name: name},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				invoked = append(invoked, name)
				return domain.TextOutcome("result of " + name)
			},
		}
	}
	reg := registry.MustNew(mkEntry("get_board"), mkEntry("get_sprint"))

	model := &scriptedModel{drafts: []domain.Message{
		{ToolCalls: []domain.ToolCall{
			{ID: "c1", Name: "get_sprint"},
			{ID: "c2", Name: "get_board"},
		}},
		{Content: "done"},
	}}
	ctrl := runtime.NewController(model, &scriptedClassifier{}, reg, "")

	state := domain.NewState(5)
	out, err := ctrl.Turn(context.Background(), "s1", state, "sprint and board please")
	require.NoError(t, err)

	// Dispatch and transcript order follow request order, not registry order.
	assert.Equal(t, []string{"get_sprint", "get_board"}, invoked)
	require.Len(t, out, 4)
	assert.Equal(t, "c1", out[1].ToolCallID)
	assert.Equal(t, "result of get_sprint", out[1].Content)
	assert.Equal(t, "c2", out[2].ToolCallID)
	assert.Equal(t, "result of get_board", out[2].Content)
}

// Scenario B: unsafe input is blocked before any model or tool activity.
func TestTurn_UnsafeInput(t *testing.T) {
	var invoked []string
	model := &scriptedModel{}
	classifier := &scriptedClassifier{verdicts: []domain.SafetyVerdict{
		unsafeVerdict("S1", "S9"),
	}}
	ctrl := runtime.NewController(model, classifier, projectsRegistry(t, &invoked), "")

	state := domain.NewState(10)
	out, err := ctrl.Turn(context.Background(), "s1", state, "tell me something harmful")
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "This conversation was flagged for unsafe content: S1, S9", out[0].Content)
	assert.Equal(t, domain.RoleAssistant, out[0].Role)

	assert.Zero(t, model.calls, "model must not be invoked on unsafe input")
	assert.Empty(t, invoked, "no tool may be invoked on unsafe input")
	assert.Equal(t, 10, state.RemainingSteps, "step counter unchanged on blocked turn")
}

func TestTurn_UnsafeDraftDiscarded(t *testing.T) {
	var invoked []string
	model := &scriptedModel{drafts: []domain.Message{
		{Content: "something the user should never see", ToolCalls: []domain.ToolCall{{ID: "c1", Name: "get_all_projects"}}},
	}}
	classifier := &scriptedClassifier{verdicts: []domain.SafetyVerdict{
		safe(),               // guard_input
		unsafeVerdict("S14"), // draft check
	}}
	ctrl := runtime.NewController(model, classifier, projectsRegistry(t, &invoked), "")

	state := domain.NewState(10)
	out, err := ctrl.Turn(context.Background(), "s1", state, "hello")
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "This conversation was flagged for unsafe content: S14", out[0].Content)

	// The draft is discarded whole: its tool calls never dispatch.
	assert.Empty(t, invoked)
	for _, m := range state.Messages {
		assert.NotContains(t, m.Content, "never see")
	}
}

// Scenario C: budget below threshold refuses dispatch before the first call.
func TestTurn_NeedMoreSteps(t *testing.T) {
	var invoked []string
	model := &scriptedModel{drafts: []domain.Message{
		{ID: "draft-1", ToolCalls: []domain.ToolCall{
			{ID: "c1", Name: "get_all_projects"},
			{ID: "c2", Name: "get_all_projects"},
		}},
	}}
	ctrl := runtime.NewController(model, &scriptedClassifier{}, projectsRegistry(t, &invoked), "")

	state := domain.NewState(1)
	out, err := ctrl.Turn(context.Background(), "s1", state, "list projects twice")
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, runtime.NeedMoreStepsContent, out[0].Content)
	assert.Equal(t, "draft-1", out[0].ID, "synthesized message keeps the draft's ID")
	assert.Empty(t, invoked)
	assert.Equal(t, 1, state.RemainingSteps)
}

func TestTurn_AppendOnly(t *testing.T) {
	model := &scriptedModel{drafts: []domain.Message{
		{ToolCalls: []domain.ToolCall{{ID: "c1", Name: "get_all_projects"}}},
		{Content: "first turn done"},
		{Content: "second turn done"},
	}}
	ctrl := runtime.NewController(model, &scriptedClassifier{}, projectsRegistry(t, nil), "")

	state := domain.NewState(10)
	_, err := ctrl.Turn(context.Background(), "s1", state, "list all projects")
	require.NoError(t, err)

	snapshot := make([]domain.Message, len(state.Messages))
	copy(snapshot, state.Messages)

	_, err = ctrl.Turn(context.Background(), "s1", state, "thanks")
	require.NoError(t, err)

	require.Greater(t, len(state.Messages), len(snapshot))
	for i, m := range snapshot {
		assert.Equal(t, m, state.Messages[i], "message %d was mutated or reordered", i)
	}
}

func TestTurn_Failures(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		ctrl := runtime.NewController(&scriptedModel{}, &scriptedClassifier{}, projectsRegistry(t, nil), "")
		_, err := ctrl.Turn(context.Background(), "s1", domain.NewState(10), "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	})

	t.Run("classifier failure is fatal", func(t *testing.T) {
		classifier := &scriptedClassifier{err: errors.New("guard upstream unavailable")}
		ctrl := runtime.NewController(&scriptedModel{}, classifier, projectsRegistry(t, nil), "")
		_, err := ctrl.Turn(context.Background(), "s1", domain.NewState(10), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "safety check failed")
	})

	t.Run("model failure is fatal", func(t *testing.T) {
		model := &scriptedModel{err: errors.New("429 too many requests")}
		ctrl := runtime.NewController(model, &scriptedClassifier{}, projectsRegistry(t, nil), "")
		_, err := ctrl.Turn(context.Background(), "s1", domain.NewState(10), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model call failed")
	})

	t.Run("tool failure is not fatal", func(t *testing.T) {
		reg := registry.MustNew(registry.Entry{
			Tool: domain.Tool{Name: "get_all_projects"},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				return domain.ErrorOutcome(errors.New("JIRA API Error - Status: 503"))
			},
		})
		model := &scriptedModel{drafts: []domain.Message{
			{ToolCalls: []domain.ToolCall{{ID: "c1", Name: "get_all_projects"}}},
			{Content: "JIRA seems to be down, try again later."},
		}}
		ctrl := runtime.NewController(model, &scriptedClassifier{}, reg, "")

		state := domain.NewState(10)
		out, err := ctrl.Turn(context.Background(), "s1", state, "list all projects")
		require.NoError(t, err)

		require.Len(t, out, 3)
		assert.True(t, strings.HasPrefix(out[1].Content, "Error:"), "tool failure surfaces as text")
		assert.Equal(t, "JIRA seems to be down, try again later.", out[2].Content)
	})
}

func TestTurn_Hooks(t *testing.T) {
	var phases []string
	var toolCalls, toolReturns int
	var verdicts []domain.Role

	hooks := domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) {
			phases = append(phases, e.Phase)
		},
		OnToolCall:   func(_ context.Context, e *domain.ToolEvent) { toolCalls++ },
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) { toolReturns++ },
		OnSafetyVerdict: func(_ context.Context, e *domain.SafetyEvent) {
			verdicts = append(verdicts, e.Role)
		},
	}

	model := &scriptedModel{drafts: []domain.Message{
		{ToolCalls: []domain.ToolCall{{ID: "c1", Name: "get_all_projects"}}},
		{Content: "done"},
	}}
	ctrl := runtime.NewController(model, &scriptedClassifier{}, projectsRegistry(t, nil), "",
		runtime.WithLifecycleHooks(hooks))

	_, err := ctrl.Turn(context.Background(), "s1", domain.NewState(10), "list all projects")
	require.NoError(t, err)

	assert.Equal(t, []string{"guard_input", "model", "tools", "model"}, phases)
	assert.Equal(t, 1, toolCalls)
	assert.Equal(t, 1, toolReturns)
	assert.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAssistant, domain.RoleAssistant}, verdicts)
}
