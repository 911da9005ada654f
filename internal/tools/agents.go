package tools

import (
	"fmt"

	"github.com/scrumhand/scrumhand/internal/azdo"
	"github.com/scrumhand/scrumhand/internal/jira"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/registry"
)

// DefaultAgentID is the agent used when a request does not name one.
const DefaultAgentID = "jira-assistant"

const jiraGuidance = `You are a helpful JIRA assistant focused on scrum management. You can interact with JIRA through its REST API.

Core guidelines:
- Use full issue keys (e.g., "PROJECT-123") when referring to JIRA issues
- For time tracking, use JIRA format (e.g., "3h 30m" for 3 hours and 30 minutes)
- For dates, use ISO format (YYYY-MM-DD) unless specified otherwise
- Always verify project and board existence before operations`

const azdoGuidance = `You are a helpful Azure DevOps assistant with the ability to interact with Azure DevOps through its API.

Core guidelines:
- Always verify project existence before performing operations
- Use exact ID/name formats for all entities (work items, projects, teams)
- Process one operation at a time and provide status updates
- Break complex requests into sequential steps
- For dates, use ISO format (YYYY-MM-DD) unless specified otherwise`

// Agent pairs a guidance prompt with the toolset it may call.
type Agent struct {
	ID          string
	Description string
	Guidance    string
	Registry    *registry.Registry
}

// Catalogue is the fixed set of agents this instance serves.
type Catalogue struct {
	order  []string
	agents map[string]Agent
}

// NewCatalogue builds the agent catalogue. Either client may be nil, in
// which case the corresponding agent is left out; at least one is required.
func NewCatalogue(jiraClient *jira.Client, azdoClient *azdo.Client) (*Catalogue, error) {
	c := &Catalogue{agents: make(map[string]Agent)}

	if jiraClient != nil {
		reg, err := registry.New(JiraEntries(jiraClient)...)
		if err != nil {
			return nil, fmt.Errorf("tools: jira registry: %w", err)
		}
		c.add(Agent{
			ID:          "jira-assistant",
			Description: "A JIRA assistant to manage JIRA board.",
			Guidance:    jiraGuidance,
			Registry:    reg,
		})
	}

	if azdoClient != nil {
		reg, err := registry.New(AzdoEntries(azdoClient)...)
		if err != nil {
			return nil, fmt.Errorf("tools: azure devops registry: %w", err)
		}
		c.add(Agent{
			ID:          "azure-devops-assistant",
			Description: "An Azure DevOps assistant to manage Azure DevOps resources.",
			Guidance:    azdoGuidance,
			Registry:    reg,
		})
	}

	if len(c.order) == 0 {
		return nil, fmt.Errorf("tools: no agents configured")
	}
	return c, nil
}

func (c *Catalogue) add(a Agent) {
	c.order = append(c.order, a.ID)
	c.agents[a.ID] = a
}

// Get resolves an agent by ID. An empty ID selects the default agent when
// it is configured, otherwise the first configured agent.
func (c *Catalogue) Get(id string) (Agent, error) {
	if id == "" {
		if a, ok := c.agents[DefaultAgentID]; ok {
			return a, nil
		}
		return c.agents[c.order[0]], nil
	}
	a, ok := c.agents[id]
	if !ok {
		return Agent{}, fmt.Errorf("%w: %s", domain.ErrUnknownAgent, id)
	}
	return a, nil
}

// All returns the agents in registration order.
func (c *Catalogue) All() []Agent {
	out := make([]Agent, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.agents[id])
	}
	return out
}
