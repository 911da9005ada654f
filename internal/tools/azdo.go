package tools

import (
	"context"

	"github.com/scrumhand/scrumhand/internal/azdo"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/registry"
)

type azdoProjectArgs struct {
	Project string `json:"project"`
}

type wiqlArgs struct {
	Project string `json:"project"`
	Query   string `json:"query"`
}

type workItemArgs struct {
	WorkItemID int `json:"work_item_id"`
}

type createWorkItemArgs struct {
	Project      string `json:"project"`
	WorkItemType string `json:"work_item_type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// AzdoEntries builds the registry entries for the Azure DevOps toolset,
// bound to the given client.
func AzdoEntries(client *azdo.Client) []registry.Entry {
	return []registry.Entry{
		{
			Tool: domain.Tool{
				Name:        "get_all_projects",
				Description: "Lists all projects in the Azure DevOps organization.",
				Parameters:  objectSchema(map[string]any{}),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				return outcome(client.Projects(ctx))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_project",
				Description: "Gets details of a specific Azure DevOps project by name or ID.",
				Parameters: objectSchema(map[string]any{
					"project": prop("string", "Project name or ID."),
				}, "project"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a azdoProjectArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.Project(ctx, a.Project))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_work_items_by_wiql",
				Description: "Queries work items in a project using a WIQL query.",
				Parameters: objectSchema(map[string]any{
					"project": prop("string", "Project name or ID."),
					"query":   prop("string", `WIQL query, e.g. "SELECT [System.Id] FROM WorkItems".`),
				}, "project", "query"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a wiqlArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.QueryWorkItems(ctx, a.Project, a.Query))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "get_work_item",
				Description: "Gets details of a specific work item by its ID.",
				Parameters: objectSchema(map[string]any{
					"work_item_id": prop("integer", "The work item ID."),
				}, "work_item_id"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a workItemArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.WorkItem(ctx, a.WorkItemID))
			},
		},
		{
			Tool: domain.Tool{
				Name:        "create_work_item",
				Description: "Creates a work item of the given type in a project.",
				Parameters: objectSchema(map[string]any{
					"project":        prop("string", "Project name or ID."),
					"work_item_type": prop("string", `Work item type, e.g. "Task", "Bug", "User Story".`),
					"title":          prop("string", "Work item title."),
					"description":    prop("string", "Work item description."),
				}, "project", "work_item_type", "title"),
			},
			Handler: func(ctx context.Context, args map[string]any) domain.ToolOutcome {
				var a createWorkItemArgs
				if err := decodeArgs(args, &a); err != nil {
					return domain.ErrorOutcome(err)
				}
				return outcome(client.CreateWorkItem(ctx, a.Project, a.WorkItemType, a.Title, a.Description))
			},
		},
	}
}
