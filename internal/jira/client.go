// Package jira provides a thin client for the JIRA Cloud REST API,
// covering the platform (rest/api/3) and agile (rest/agile/1.0) surfaces
// the assistant tools need.
package jira

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

const (
	platformBasePath = "rest/api/3/"
	agileBasePath    = "rest/agile/1.0/"
)

// Config carries the connection settings for a JIRA Cloud site.
type Config struct {
	// BaseURL is the site URL, e.g. "https://example.atlassian.net".
	BaseURL string
	// Email is the account email paired with the API token.
	Email string
	// APIToken is an Atlassian API token.
	APIToken string
}

// Client talks to a single JIRA Cloud site using basic authentication.
type Client struct {
	baseURL    string
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

// NewClient builds a Client from cfg. All three settings are required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira: base URL, email and API token must all be set")
	}

	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.APIToken))

	c := &Client{
		baseURL:    base,
		authHeader: "Basic " + auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiError is the error body JIRA returns for failed requests.
type apiError struct {
	ErrorMessages []string `json:"errorMessages"`
	Message       string   `json:"message"`
}

func (c *Client) do(ctx context.Context, method, basePath, endpoint string, params url.Values, body any) (map[string]any, error) {
	u := c.baseURL + basePath + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("jira: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("jira: build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("jira request", "method", method, "endpoint", basePath+endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jira: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return map[string]any{"success": true, "status_code": resp.StatusCode}, nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		// Some agile endpoints reply with a bare array.
		var list []any
		if listErr := json.Unmarshal(raw, &list); listErr == nil {
			return map[string]any{"values": list}, nil
		}
		return nil, fmt.Errorf("jira: invalid JSON response: %s", string(raw))
	}
	return out, nil
}

func decodeError(status int, raw []byte) error {
	msg := fmt.Sprintf("jira API error, status %d", status)

	var body apiError
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case len(body.ErrorMessages) > 0:
			msg += ": " + strings.Join(body.ErrorMessages, ", ")
		case body.Message != "":
			msg += ": " + body.Message
		default:
			msg += ": " + string(raw)
		}
	} else {
		msg += ": " + string(raw)
	}
	return fmt.Errorf("%s", msg)
}

// adfDocument wraps plain text in the Atlassian Document Format that the
// v3 API requires for rich-text fields.
func adfDocument(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

// Projects lists projects visible to the authenticated user.
func (c *Client) Projects(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, platformBasePath, "project/search", nil, nil)
}

// Project fetches a single project by key or ID.
func (c *Client) Project(ctx context.Context, projectKey string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, platformBasePath, "project/"+projectKey, nil, nil)
}

// Issue fetches the core fields of an issue by key.
func (c *Client) Issue(ctx context.Context, issueKey string) (map[string]any, error) {
	params := url.Values{}
	params.Set("fields", "summary,description,status,assignee,priority,issuetype,created,updated")
	return c.do(ctx, http.MethodGet, platformBasePath, "issue/"+issueKey, params, nil)
}

// CreateIssue creates an issue in the given project. The description is
// wrapped in ADF before sending.
func (c *Client) CreateIssue(ctx context.Context, projectKey, summary, description, issueType string) (map[string]any, error) {
	if issueType == "" {
		issueType = "Task"
	}
	data := map[string]any{
		"fields": map[string]any{
			"project":     map[string]any{"key": projectKey},
			"summary":     summary,
			"description": adfDocument(description),
			"issuetype":   map[string]any{"name": issueType},
		},
	}
	return c.do(ctx, http.MethodPost, platformBasePath, "issue", nil, data)
}

// SearchIssues runs a JQL query and returns up to maxResults issues with
// a compact field set.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) (map[string]any, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	data := map[string]any{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     []string{"key", "summary", "status", "assignee", "priority", "issuetype"},
	}
	return c.do(ctx, http.MethodPost, platformBasePath, "search", nil, data)
}

// Boards lists agile boards, optionally filtered by project key.
func (c *Client) Boards(ctx context.Context, projectKey string) (map[string]any, error) {
	var params url.Values
	if projectKey != "" {
		params = url.Values{}
		params.Set("projectKeyOrId", projectKey)
	}
	return c.do(ctx, http.MethodGet, agileBasePath, "board", params, nil)
}

// Board fetches a single agile board by ID.
func (c *Client) Board(ctx context.Context, boardID int) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, agileBasePath, "board/"+strconv.Itoa(boardID), nil, nil)
}

// BoardSprints lists the sprints of a board.
func (c *Client) BoardSprints(ctx context.Context, boardID int) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, agileBasePath, "board/"+strconv.Itoa(boardID)+"/sprint", nil, nil)
}

// Sprint fetches a sprint by ID.
func (c *Client) Sprint(ctx context.Context, sprintID int) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, agileBasePath, "sprint/"+strconv.Itoa(sprintID), nil, nil)
}

// CreateSprint creates a sprint on the given board. Dates are ISO 8601
// strings and may be empty.
func (c *Client) CreateSprint(ctx context.Context, name string, originBoardID int, startDate, endDate, goal string) (map[string]any, error) {
	data := map[string]any{
		"name":          name,
		"originBoardId": originBoardID,
	}
	if startDate != "" {
		data["startDate"] = startDate
	}
	if endDate != "" {
		data["endDate"] = endDate
	}
	if goal != "" {
		data["goal"] = goal
	}
	return c.do(ctx, http.MethodPost, agileBasePath, "sprint", nil, data)
}

// SprintIssues lists the issues assigned to a sprint.
func (c *Client) SprintIssues(ctx context.Context, sprintID int) (map[string]any, error) {
	params := url.Values{}
	params.Set("fields", "summary,status,assignee,issuetype")
	return c.do(ctx, http.MethodGet, agileBasePath, "sprint/"+strconv.Itoa(sprintID)+"/issue", params, nil)
}

// MoveIssuesToSprint moves up to 50 issues into a sprint.
func (c *Client) MoveIssuesToSprint(ctx context.Context, sprintID int, issueKeys []string) (map[string]any, error) {
	data := map[string]any{"issues": issueKeys}
	return c.do(ctx, http.MethodPost, agileBasePath, "sprint/"+strconv.Itoa(sprintID)+"/issue", nil, data)
}

// Comments lists the comments on an issue.
func (c *Client) Comments(ctx context.Context, issueKey string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, platformBasePath, "issue/"+issueKey+"/comment", nil, nil)
}

// AddComment adds a plain-text comment to an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, body string) (map[string]any, error) {
	data := map[string]any{"body": adfDocument(body)}
	return c.do(ctx, http.MethodPost, platformBasePath, "issue/"+issueKey+"/comment", nil, data)
}
