package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:  srv.URL,
		Email:    "bot@example.com",
		APIToken: "token-123",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresSettings(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://example.atlassian.net"})
	assert.Error(t, err)
}

func TestIssue(t *testing.T) {
	var gotPath, gotAuth, gotFields string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFields = r.URL.Query().Get("fields")
		json.NewEncoder(w).Encode(map[string]any{
			"key":    "PROJ-1",
			"fields": map[string]any{"summary": "Fix login"},
		})
	})

	resp, err := client.Issue(context.Background(), "PROJ-1")
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/3/issue/PROJ-1", gotPath)
	// base64("bot@example.com:token-123")
	assert.Equal(t, "Basic Ym90QGV4YW1wbGUuY29tOnRva2VuLTEyMw==", gotAuth)
	assert.Contains(t, gotFields, "summary")
	assert.Equal(t, "PROJ-1", resp["key"])
}

func TestCreateIssue_WrapsDescriptionInADF(t *testing.T) {
	var body map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"key": "PROJ-42"})
	})

	resp, err := client.CreateIssue(context.Background(), "PROJ", "Add SSO", "support okta", "")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-42", resp["key"])

	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Add SSO", fields["summary"])
	assert.Equal(t, map[string]any{"name": "Task"}, fields["issuetype"])

	desc := fields["description"].(map[string]any)
	assert.Equal(t, "doc", desc["type"])
}

func TestSearchIssues_DefaultsMaxResults(t *testing.T) {
	var body map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/3/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"total": 0, "issues": []any{}})
	})

	_, err := client.SearchIssues(context.Background(), "project = PROJ", 0)
	require.NoError(t, err)

	assert.Equal(t, "project = PROJ", body["jql"])
	assert.Equal(t, float64(10), body["maxResults"])
}

func TestAgileEndpoints_UseAgileBasePath(t *testing.T) {
	var paths []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": 7})
	})

	ctx := context.Background()
	_, err := client.Sprint(ctx, 7)
	require.NoError(t, err)
	_, err = client.MoveIssuesToSprint(ctx, 7, []string{"PROJ-1", "PROJ-2"})
	require.NoError(t, err)
	_, err = client.BoardSprints(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/rest/agile/1.0/sprint/7",
		"/rest/agile/1.0/sprint/7/issue",
		"/rest/agile/1.0/board/3/sprint",
	}, paths)
}

func TestErrorBodyDecoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
	})

	_, err := client.Issue(context.Background(), "PROJ-999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "Issue does not exist")
}

func TestNoContentResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := client.MoveIssuesToSprint(context.Background(), 7, []string{"PROJ-1"})
	require.NoError(t, err)
	assert.Equal(t, true, resp["success"])
}
