package tools

import (
	"context"

	"github.com/scrumhand/scrumhand/internal/jira"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/registry"
)

type getIssueArgs struct {
	IssueKey string `json:"issue_key"`
}

type createIssueArgs struct {
	ProjectKey  string `json:"project_key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	IssueType   string `json:"issue_type"`
}

type searchIssuesArgs struct {
	JQL        string `json:"jql"`
	MaxResults int    `json:"max_results"`
}

type getProjectArgs struct {
	ProjectKey string `json:"project_key"`
}

type boardArgs struct {
	BoardID int `json:"board_id"`
}

type sprintArgs struct {
	SprintID int `json:"sprint_id"`
}

type createSprintArgs struct {
	Name          string `json:"name"`
	OriginBoardID int    `json:"origin_board_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Goal          string `json:"goal"`
}

type moveIssuesArgs struct {
	SprintID  int      `json:"sprint_id"`
	IssueKeys []string `json:"issue_keys"`
}

type commentArgs struct {
	IssueKey string `json:"issue_key"`
}

type addCommentArgs struct {
	IssueKey string `json:"issue_key"`
	Body     string `json:"body"`
}

// JiraEntries builds the registry entries for the JIRA toolset, bound to
// the given client.
func JiraEntries(client *jira.Client) []registry.Entry {
	return []registry.Entry{
		{
			Tool: domain.Tool{
				Name:        "get_issue",
				Description: "Retrieves details of a specific JIRA issue by its key, such as summary, status and assignee.",
				Parameters: objectSchema(map[string]any{
					"issue_key": prop("string", `The issue key, e.g. "PROJECT-123".`),
				}, "issue_key"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a getIssueArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Issue(ctx, a.IssueKey))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "create_issue",
				Description: "Creates a new JIRA issue in a project with the given summary, description and issue type.",
				Parameters: objectSchema(map[string]any{
					"project_key": prop("string", `The project key, e.g. "PROJECT".`),
					"summary":     prop("string", "Issue summary or title."),
					"description": prop("string", "Issue description."),
					"issue_type":  prop("string", `Issue type, e.g. "Task", "Bug", "Story". Defaults to "Task".`),
				}, "project_key", "summary", "description"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a createIssueArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.CreateIssue(ctx, a.ProjectKey, a.Summary, a.Description, a.IssueType))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "search_issues",
				Description: "Searches for JIRA issues using a JQL query and returns matching issues.",
				Parameters: objectSchema(map[string]any{
					"jql":         prop("string", `JQL query string, e.g. "project = PROJ AND status = 'In Progress'".`),
					"max_results": prop("integer", "Maximum number of results to return. Defaults to 10."),
				}, "jql"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a searchIssuesArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.SearchIssues(ctx, a.JQL, a.MaxResults))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_all_projects",
				Description: "Lists all JIRA projects visible to the assistant.",
				Parameters:  objectSchema(map[string]any{}),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				return outcome(client.Projects(ctx))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_project",
				Description: "Gets detailed information about a JIRA project by its key.",
				Parameters: objectSchema(map[string]any{
					"project_key": prop("string", `The project key, e.g. "PROJECT".`),
				}, "project_key"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a getProjectArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Project(ctx, a.ProjectKey))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_all_boards",
				Description: "Lists all accessible agile boards, optionally filtered by project key.",
				Parameters: objectSchema(map[string]any{
					"project_key": prop("string", "Optional project key to filter boards by."),
				}),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a getProjectArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Boards(ctx, a.ProjectKey))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_board",
				Description: "Gets details of a specific agile board by its ID.",
				Parameters: objectSchema(map[string]any{
					"board_id": prop("integer", "The board ID."),
				}, "board_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a boardArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Board(ctx, a.BoardID))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_all_sprints",
				Description: "Lists the sprints on an agile board.",
				Parameters: objectSchema(map[string]any{
					"board_id": prop("integer", "The board ID."),
				}, "board_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a boardArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.BoardSprints(ctx, a.BoardID))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_sprint",
				Description: "Gets details of a specific sprint such as name, state and dates.",
				Parameters: objectSchema(map[string]any{
					"sprint_id": prop("integer", "The sprint ID."),
				}, "sprint_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a sprintArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Sprint(ctx, a.SprintID))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "create_sprint",
				Description: "Creates a new sprint on a board with optional start date, end date and goal.",
				Parameters: objectSchema(map[string]any{
					"name":            prop("string", "The name of the sprint."),
					"origin_board_id": prop("integer", "The ID of the board in which to create the sprint."),
					"start_date":      prop("string", "Start date in ISO format."),
					"end_date":        prop("string", "End date in ISO format."),
					"goal":            prop("string", "The goal of the sprint."),
				}, "name", "origin_board_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a createSprintArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.CreateSprint(ctx, a.Name, a.OriginBoardID, a.StartDate, a.EndDate, a.Goal))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_sprint_issues",
				Description: "Lists the issues assigned to a sprint.",
				Parameters: objectSchema(map[string]any{
					"sprint_id": prop("integer", "The sprint ID."),
				}, "sprint_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a sprintArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.SprintIssues(ctx, a.SprintID))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "move_issues_to_sprint",
				Description: "Moves issues into a sprint by their keys.",
				Parameters: objectSchema(map[string]any{
					"sprint_id": prop("integer", "The sprint ID."),
					"issue_keys": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Issue keys to move into the sprint.",
					},
				}, "sprint_id", "issue_keys"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a moveIssuesArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.MoveIssuesToSprint(ctx, a.SprintID, a.IssueKeys))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_comments",
				Description: "Gets all comments for a JIRA issue.",
				Parameters: objectSchema(map[string]any{
					"issue_key": prop("string", `The issue key, e.g. "PROJECT-123".`),
				}, "issue_key"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a commentArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Comments(ctx, a.IssueKey))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "add_comment",
				Description: "Adds a plain-text comment to a JIRA issue.",
				Parameters: objectSchema(map[string]any{
					"issue_key": prop("string", `The issue key, e.g. "PROJECT-123".`),
					"body":      prop("string", "The comment text."),
				}, "issue_key", "body"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a addCommentArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.AddComment(ctx, a.IssueKey, a.Body))
			},
		},
	}
}
