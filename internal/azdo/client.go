// Package azdo provides a small client for the Azure DevOps REST API,
// covering projects and work item tracking.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scrumhand/scrumhand/internal/logging"
)

const apiVersion = "7.1"

// Config carries the connection settings for an Azure DevOps organization.
type Config struct {
	// OrgURL is the organization URL, e.g. "https://dev.azure.com/myorg".
	OrgURL string
	// PAT is a personal access token.
	PAT string
}

// Client talks to a single Azure DevOps organization.
type Client struct {
	orgURL     string
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a Client from cfg. Both settings are required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.OrgURL == "" || cfg.PAT == "" {
		return nil, fmt.Errorf("azdo: organization URL and PAT must both be set")
	}

	// PAT auth is basic auth with an empty username.
	auth := base64.StdEncoding.EncodeToString([]byte(":" + cfg.PAT))

	c := &Client{
		orgURL:     strings.TrimSuffix(cfg.OrgURL, "/"),
		authHeader: "Basic " + auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, params url.Values, body any) (map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", apiVersion)
	u := c.orgURL + path + "?" + params.Encode()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("azdo: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("azdo: build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("azdo request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azdo: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azdo: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
			return nil, fmt.Errorf("azdo API error, status %d: %s", resp.StatusCode, body.Message)
		}
		return nil, fmt.Errorf("azdo API error, status %d: %s", resp.StatusCode, string(raw))
	}

	if len(raw) == 0 {
		return map[string]any{"success": true, "status_code": resp.StatusCode}, nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("azdo: invalid JSON response: %s", string(raw))
	}
	return out, nil
}

// Projects lists the projects in the organization.
func (c *Client) Projects(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, "/_apis/projects", "application/json", nil, nil)
}

// Project fetches a project by name or ID.
func (c *Client) Project(ctx context.Context, nameOrID string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, "/_apis/projects/"+nameOrID, "application/json", nil, nil)
}

// QueryWorkItems runs a WIQL query scoped to a project.
func (c *Client) QueryWorkItems(ctx context.Context, project, wiql string) (map[string]any, error) {
	data := map[string]any{"query": wiql}
	return c.do(ctx, http.MethodPost, "/"+project+"/_apis/wit/wiql", "application/json", nil, data)
}

// WorkItem fetches a work item by ID with all fields.
func (c *Client) WorkItem(ctx context.Context, id int) (map[string]any, error) {
	params := url.Values{}
	params.Set("$expand", "fields")
	return c.do(ctx, http.MethodGet, "/_apis/wit/workitems/"+strconv.Itoa(id), "application/json", params, nil)
}

// CreateWorkItem creates a work item of the given type in a project.
// The body is a JSON Patch document, as the work item tracking API requires.
func (c *Client) CreateWorkItem(ctx context.Context, project, workItemType, title, description string) (map[string]any, error) {
	patch := []map[string]any{
		{"op": "add", "path": "/fields/System.Title", "value": title},
	}
	if description != "" {
		patch = append(patch, map[string]any{
			"op": "add", "path": "/fields/System.Description", "value": description,
		})
	}
	path := "/" + project + "/_apis/wit/workitems/$" + workItemType
	return c.do(ctx, http.MethodPost, path, "application/json-patch+json", nil, patch)
}
