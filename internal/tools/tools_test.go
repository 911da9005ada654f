package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumhand/scrumhand/internal/azdo"
	"github.com/scrumhand/scrumhand/internal/jira"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/registry"
)

func newJiraClient(t *testing.T, handler http.HandlerFunc) *jira.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := jira.NewClient(jira.Config{
		BaseURL:  srv.URL,
		Email:    "bot@example.com",
		APIToken: "token",
	})
	require.NoError(t, err)
	return client
}

func TestDecodeArgs_WeaklyTyped(t *testing.T) {
	// JSON numbers arrive as float64.
	var a sprintArgs
	require.NoError(t, decodeArgs(map[string]any{"sprint_id": float64(7)}, &a))
	assert.Equal(t, 7, a.SprintID)
}

func TestJiraEntries_Dispatch(t *testing.T) {
	client := newJiraClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"key": "PROJ-1"})
	})

	reg, err := registry.New(JiraEntries(client)...)
	require.NoError(t, err)
	assert.Equal(t, 14, reg.Len())

	out := reg.Dispatch(context.Background(), domain.ToolCall{
		Name: "get_issue",
		Args: map[string]any{"issue_key": "PROJ-1"},
	})
	require.NoError(t, out.Err)
	assert.Contains(t, out.Text(), `"key": "PROJ-1"`)
}

func TestJiraEntries_APIErrorBecomesOutcome(t *testing.T) {
	client := newJiraClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"errorMessages": []string{"permission denied"}})
	})

	reg, err := registry.New(JiraEntries(client)...)
	require.NoError(t, err)

	out := reg.Dispatch(context.Background(), domain.ToolCall{
		Name: "get_issue",
		Args: map[string]any{"issue_key": "PROJ-1"},
	})
	require.Error(t, out.Err)
	assert.Contains(t, out.Text(), "Error:")
	assert.Contains(t, out.Text(), "permission denied")
}

func TestAzdoEntries_Dispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_apis/wit/workitems/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	}))
	t.Cleanup(srv.Close)

	client, err := azdo.NewClient(azdo.Config{OrgURL: srv.URL, PAT: "pat"})
	require.NoError(t, err)

	reg, err := registry.New(AzdoEntries(client)...)
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())

	out := reg.Dispatch(context.Background(), domain.ToolCall{
		Name: "get_work_item",
		Args: map[string]any{"work_item_id": float64(42)},
	})
	require.NoError(t, out.Err)
	assert.Contains(t, out.Text(), `"id": 42`)
}

func TestCatalogue(t *testing.T) {
	jiraClient := newJiraClient(t, func(w http.ResponseWriter, r *http.Request) {})
	azdoClient, err := azdo.NewClient(azdo.Config{OrgURL: "https://dev.azure.com/org", PAT: "pat"})
	require.NoError(t, err)

	cat, err := NewCatalogue(jiraClient, azdoClient)
	require.NoError(t, err)

	t.Run("Default Agent", func(t *testing.T) {
		agent, err := cat.Get("")
		require.NoError(t, err)
		assert.Equal(t, "jira-assistant", agent.ID)
	})

	t.Run("By ID", func(t *testing.T) {
		agent, err := cat.Get("azure-devops-assistant")
		require.NoError(t, err)
		assert.Equal(t, 5, agent.Registry.Len())
	})

	t.Run("Unknown Agent", func(t *testing.T) {
		_, err := cat.Get("github-assistant")
		assert.True(t, errors.Is(err, domain.ErrUnknownAgent))
	})

	t.Run("Ordering", func(t *testing.T) {
		all := cat.All()
		require.Len(t, all, 2)
		assert.Equal(t, "jira-assistant", all[0].ID)
		assert.Equal(t, "azure-devops-assistant", all[1].ID)
	})
}

func TestCatalogue_NoClients(t *testing.T) {
	_, err := NewCatalogue(nil, nil)
	assert.Error(t, err)
}
