package scrumhand

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scrumhand/scrumhand/internal/logging"
	"github.com/scrumhand/scrumhand/internal/runtime"
	"github.com/scrumhand/scrumhand/internal/tools"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/ports"
	"github.com/scrumhand/scrumhand/pkg/session"
)

// Version is the release version of the module. Overridden at build time
// via -ldflags.
var Version = "dev"

// Service is the high-level entry point for embedding the assistant. It
// owns the agent catalogue, the per-agent turn controllers and the session
// manager, and is safe for concurrent use.
type Service struct {
	agents      *tools.Catalogue
	sessions    *session.Manager
	controllers map[string]*runtime.Controller
	stepBudget  int
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	hooks      domain.LifecycleHooks
	stepBudget int
	logger     *slog.Logger
}

// WithLifecycleHooks registers observability hooks on every controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ServiceOption {
	return func(c *serviceConfig) {
		c.hooks = hooks
	}
}

// WithStepBudget sets the step budget granted to new sessions.
func WithStepBudget(budget int) ServiceOption {
	return func(c *serviceConfig) {
		c.stepBudget = budget
	}
}

// WithLogger sets a structured logger for the service and its controllers.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

// NewService wires a model client, a safety classifier, an agent catalogue
// and a session manager into a ready-to-serve Service.
func NewService(model ports.ModelClient, guard ports.SafetyClassifier, agents *tools.Catalogue, sessions *session.Manager, opts ...ServiceOption) (*Service, error) {
	if model == nil || guard == nil || agents == nil || sessions == nil {
		return nil, fmt.Errorf("scrumhand: model, guard, agents and sessions are all required")
	}

	cfg := serviceConfig{
		stepBudget: domain.DefaultStepBudget,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		agents:      agents,
		sessions:    sessions,
		controllers: make(map[string]*runtime.Controller),
		stepBudget:  cfg.stepBudget,
		logger:      cfg.logger,
	}

	for _, agent := range agents.All() {
		s.controllers[agent.ID] = runtime.NewController(model, guard, agent.Registry, agent.Guidance,
			runtime.WithLifecycleHooks(cfg.hooks),
			runtime.WithLogger(cfg.logger.With("agent", agent.ID)),
		)
	}

	return s, nil
}

// Turn runs one conversational turn for the given agent and session and
// returns the messages appended by it. An empty agentID selects the
// default agent; maxSteps overrides the step budget for new sessions when
// positive.
func (s *Service) Turn(ctx context.Context, agentID, sessionID, message string, maxSteps int) ([]domain.Message, error) {
	agent, err := s.agents.Get(agentID)
	if err != nil {
		return nil, err
	}

	budget := s.stepBudget
	if maxSteps > 0 {
		budget = maxSteps
	}

	return s.sessions.Turn(ctx, s.controllers[agent.ID], sessionID, message, budget)
}

// Agents lists the configured agents.
func (s *Service) Agents() []tools.Agent {
	return s.agents.All()
}

// History returns the full conversation state of a session.
func (s *Service) History(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	return s.sessions.Load(ctx, sessionID)
}

// Sessions lists the known session IDs.
func (s *Service) Sessions(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

// DeleteSession removes a session and its transcript.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
