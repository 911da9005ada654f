package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/scrumhand/scrumhand"
	"github.com/scrumhand/scrumhand/config"
	"github.com/scrumhand/scrumhand/internal/azdo"
	"github.com/scrumhand/scrumhand/internal/jira"
	"github.com/scrumhand/scrumhand/internal/llm"
	"github.com/scrumhand/scrumhand/internal/safety"
	"github.com/scrumhand/scrumhand/internal/tools"
	"github.com/scrumhand/scrumhand/pkg/adapters/file"
	"github.com/scrumhand/scrumhand/pkg/adapters/memory"
	redisadapter "github.com/scrumhand/scrumhand/pkg/adapters/redis"
	"github.com/scrumhand/scrumhand/pkg/observability"
	"github.com/scrumhand/scrumhand/pkg/persistence/middleware"
	"github.com/scrumhand/scrumhand/pkg/ports"
	"github.com/scrumhand/scrumhand/pkg/session"
)

// buildStore constructs the configured session store, optional encryption
// layer and, for Redis, a distributed locker. The returned cleanup closes
// any held connections and is safe to call on a nil-free path.
func buildStore(cfg *config.Config) (ports.StateStore, []session.Option, func(), error) {
	var (
		store   ports.StateStore
		opts    []session.Option
		cleanup = func() {}
	)

	switch cfg.Store {
	case "memory", "":
		store = memory.NewStore()
	case "file":
		store = file.New(cfg.FileDir)
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisadapter.NewFromClient(client)
		opts = append(opts, session.WithLocker(redisadapter.NewLocker(client, "scrumhand:lock:")))
		cleanup = func() { client.Close() }
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	if cfg.EncryptionKey != "" {
		if len(cfg.EncryptionKey) != 32 {
			cleanup()
			return nil, nil, nil, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(cfg.EncryptionKey))
		}
		fallbacks := make([][]byte, 0, len(cfg.FallbackKeys))
		for _, k := range cfg.FallbackKeys {
			fallbacks = append(fallbacks, []byte(k))
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    []byte(cfg.EncryptionKey),
			FallbackKeys: fallbacks,
		}))
	}

	return store, opts, cleanup, nil
}

// buildService wires the full assistant service from configuration.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scrumhand.Service, func(), error) {
	store, sessionOpts, cleanup, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	model, err := llm.New(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("model client: %w", err)
	}

	guardModelName := cfg.GuardModel
	if guardModelName == "" {
		guardModelName = cfg.Model
	}
	guardModel, err := llm.New(ctx, cfg.Provider, guardModelName)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("guard model client: %w", err)
	}
	guard := safety.NewGuard(guardModel, safety.WithLogger(logger))

	var jiraClient *jira.Client
	if cfg.HasJira() {
		jiraClient, err = jira.NewClient(jira.Config{
			BaseURL:  cfg.Jira.URL,
			Email:    cfg.Jira.Email,
			APIToken: cfg.Jira.APIToken,
		}, jira.WithLogger(logger))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var azdoClient *azdo.Client
	if cfg.HasAzureDevOps() {
		azdoClient, err = azdo.NewClient(azdo.Config{
			OrgURL: cfg.AzureDevOps.OrgURL,
			PAT:    cfg.AzureDevOps.PAT,
		}, azdo.WithLogger(logger))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	agents, err := tools.NewCatalogue(jiraClient, azdoClient)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("no toolsets available, set JIRA or Azure DevOps credentials: %w", err)
	}

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	sessions := session.NewManager(store, append(sessionOpts, session.WithLogger(logger))...)

	svc, err := scrumhand.NewService(model, guard, agents, sessions,
		scrumhand.WithStepBudget(cfg.StepBudget),
		scrumhand.WithLifecycleHooks(metrics.Hooks()),
		scrumhand.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
