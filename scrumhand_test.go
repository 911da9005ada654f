package scrumhand_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumhand/scrumhand"
	"github.com/scrumhand/scrumhand/internal/jira"
	"github.com/scrumhand/scrumhand/internal/tools"
	"github.com/scrumhand/scrumhand/pkg/adapters/memory"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/session"
)

// scriptedModel replays a fixed sequence of assistant drafts.
type scriptedModel struct {
	drafts []domain.Message
	calls  int
}

func (m *scriptedModel) Complete(ctx context.Context, system string, msgs []domain.Message, ts []domain.Tool) (*domain.Message, error) {
	draft := m.drafts[m.calls]
	m.calls++
	return &draft, nil
}

type safeClassifier struct{}

func (safeClassifier) Classify(ctx context.Context, role domain.Role, msgs []domain.Message) (domain.SafetyVerdict, error) {
	return domain.SafetyVerdict{Assessment: domain.AssessmentSafe}, nil
}

func newTestService(t *testing.T, model *scriptedModel) *scrumhand.Service {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"key": "PROJ-1", "fields": map[string]any{"summary": "Fix login"}})
	}))
	t.Cleanup(api.Close)

	jiraClient, err := jira.NewClient(jira.Config{BaseURL: api.URL, Email: "bot@example.com", APIToken: "token"})
	require.NoError(t, err)

	agents, err := tools.NewCatalogue(jiraClient, nil)
	require.NoError(t, err)

	service, err := scrumhand.NewService(model, safeClassifier{}, agents, session.NewManager(memory.NewStore()))
	require.NoError(t, err)
	return service
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := scrumhand.NewService(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestTurn_PlainReply(t *testing.T) {
	reply := domain.NewAssistantMessage("Nothing to do.")
	service := newTestService(t, &scriptedModel{drafts: []domain.Message{reply}})

	messages, err := service.Turn(context.Background(), "", "s1", "status?", 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.RoleAssistant, messages[0].Role)
	assert.Equal(t, "Nothing to do.", messages[0].Content)
}

func TestTurn_ToolRoundTrip(t *testing.T) {
	withCall := domain.NewAssistantMessage("")
	withCall.ToolCalls = []domain.ToolCall{{
		ID:   "call-1",
		Name: "get_issue",
		Args: map[string]any{"issue_key": "PROJ-1"},
	}}
	final := domain.NewAssistantMessage("PROJ-1 is about fixing login.")

	model := &scriptedModel{drafts: []domain.Message{withCall, final}}
	service := newTestService(t, model)

	messages, err := service.Turn(context.Background(), "jira-assistant", "s1", "what is PROJ-1?", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, domain.RoleAssistant, messages[0].Role)
	require.Len(t, messages[0].ToolCalls, 1)

	assert.Equal(t, domain.RoleTool, messages[1].Role)
	assert.Equal(t, "call-1", messages[1].ToolCallID)
	assert.Contains(t, messages[1].Content, "PROJ-1")

	assert.Equal(t, "PROJ-1 is about fixing login.", messages[2].Content)
	assert.Equal(t, 2, model.calls)
}

func TestTurn_UnknownAgent(t *testing.T) {
	service := newTestService(t, &scriptedModel{drafts: []domain.Message{domain.NewAssistantMessage("hi")}})

	_, err := service.Turn(context.Background(), "github-assistant", "s1", "hi", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownAgent)
}

func TestSessionAccessors(t *testing.T) {
	service := newTestService(t, &scriptedModel{drafts: []domain.Message{domain.NewAssistantMessage("done")}})
	ctx := context.Background()

	_, err := service.Turn(ctx, "", "s1", "hello", 0)
	require.NoError(t, err)

	ids, err := service.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s1")

	state, err := service.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, domain.RoleUser, state.Messages[0].Role)

	require.NoError(t, service.DeleteSession(ctx, "s1"))
	_, err = service.History(ctx, "s1")
	assert.Error(t, err)
}

func TestAgents_ListsCatalogue(t *testing.T) {
	service := newTestService(t, &scriptedModel{})

	agents := service.Agents()
	require.Len(t, agents, 1)
	assert.Equal(t, "jira-assistant", agents[0].ID)
}
