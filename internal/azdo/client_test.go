package azdo

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

	client, err := NewClient(Config{OrgURL: srv.URL + "/", PAT: "pat-abc"})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresSettings(t *testing.T) {
	_, err := NewClient(Config{OrgURL: "https://dev.azure.com/myorg"})
	assert.Error(t, err)
}

func TestProjects(t *testing.T) {
	var gotPath, gotAuth, gotVersion string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.URL.Query().Get("api-version")
		json.NewEncoder(w).Encode(map[string]any{"count": 1, "value": []any{
			map[string]any{"name": "Fabrikam"},
		}})
	})

	resp, err := client.Projects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/_apis/projects", gotPath)
	// base64(":pat-abc")
	assert.Equal(t, "Basic OnBhdC1hYmM=", gotAuth)
	assert.Equal(t, "7.1", gotVersion)
	assert.Equal(t, float64(1), resp["count"])
}

func TestQueryWorkItems(t *testing.T) {
	var body map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Fabrikam/_apis/wit/wiql", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"workItems": []any{}})
	})

	_, err := client.QueryWorkItems(context.Background(), "Fabrikam", "SELECT [System.Id] FROM WorkItems")
	require.NoError(t, err)
	assert.Equal(t, "SELECT [System.Id] FROM WorkItems", body["query"])
}

func TestCreateWorkItem_SendsJSONPatch(t *testing.T) {
	var patch []map[string]any
	var contentType string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		assert.Equal(t, "/Fabrikam/_apis/wit/workitems/$Task", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	})

	resp, err := client.CreateWorkItem(context.Background(), "Fabrikam", "Task", "Fix build", "nightly job broken")
	require.NoError(t, err)

	assert.Equal(t, "application/json-patch+json", contentType)
	assert.Equal(t, float64(42), resp["id"])
	require.Len(t, patch, 2)
	assert.Equal(t, "/fields/System.Title", patch[0]["path"])
	assert.Equal(t, "Fix build", patch[0]["value"])
	assert.Equal(t, "/fields/System.Description", patch[1]["path"])
}

func TestErrorBodyDecoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "The work item does not exist."})
	})

	_, err := client.WorkItem(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "work item does not exist")
}
