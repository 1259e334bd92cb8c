package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/dashboard"
	"candidate-insights/internal/flight"
	"candidate-insights/internal/gateway"
	"candidate-insights/internal/insights"
	"candidate-insights/internal/llm"
	"candidate-insights/internal/llm/gemini"
	"candidate-insights/internal/llm/openai"
	"candidate-insights/internal/services/health"
	"candidate-insights/internal/shared/config"
	"candidate-insights/internal/shared/metrics"
	"candidate-insights/internal/shared/server"
	"candidate-insights/internal/shared/server/middleware"
	"candidate-insights/internal/shared/storage/db"
	"candidate-insights/internal/shared/telemetry"
)

// Rate-limit buckets idle this long are full again under every rule.
const limiterIdle = 10 * time.Minute

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Limiter   *middleware.RateLimiter
	Router    *gin.Engine
	DB        *sql.DB
	Store     *candidates.Store
	LLM       llm.Generator
	Gateway   *gateway.Gateway
	Flights   *flight.Registry
	Health    *health.Service
	Dashboard *dashboard.Handler
	Insights  *insights.Handler
}

// Options lets callers replace external dependencies, mainly in tests.
type Options struct {
	Source    candidates.Source
	Generator llm.Generator
}

// Build loads the candidate pool and wires handlers. A pool that fails to
// load is fatal; a missing LLM credential is not.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	src := opts.Source
	if src == nil {
		var err error
		src, err = app.buildSource(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	store, err := candidates.Load(ctx, src)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	metrics.SetCandidatesLoaded(store.Len())
	telemetry.Info("candidates.loaded", map[string]any{
		"source": src.Name(),
		"count":  store.Len(),
	})

	app.LLM = opts.Generator
	if app.LLM == nil {
		app.LLM = buildGenerator(ctx, cfg)
	}
	app.Gateway = gateway.New(app.LLM)

	app.Flights = flight.NewRegistry(flight.Options{
		IdleTTL:  cfg.SessionIdleTTL,
		Describe: insights.DescribeError,
		Hooks: flight.Hooks{
			Started: metrics.IncGatewayStarted,
			Finished: func(op string, status flight.Status, d time.Duration) {
				metrics.ObserveGatewayFinished(op, string(status), d)
			},
			Superseded: metrics.IncGatewaySuperseded,
		},
	})

	app.Health = health.NewService(store.Len(), src.Name(), cfg.LLMProvider)
	app.Dashboard = dashboard.NewHandler(store)
	app.Insights = insights.NewHandler(app.Gateway, store, app.Flights, 0)
	app.Limiter = middleware.NewRateLimiter(nil)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Health:    app.Health,
		Dashboard: app.Dashboard,
		Insights:  app.Insights,
		Limiter:   app.Limiter,
	})

	return app, nil
}

// RunMaintenance sweeps idle sessions until ctx is done.
func (a *App) RunMaintenance(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.Flights.Sweep(); removed > 0 {
				telemetry.Info("sessions.swept", map[string]any{"removed": removed})
			}
			a.Insights.SweepPollers()
			a.Limiter.Prune(limiterIdle)
		}
	}
}

// Close cancels in-flight gateway calls and releases the database.
func (a *App) Close() {
	if a.Flights != nil {
		a.Flights.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("bootstrap: close database: %v", err)
		}
		a.DB = nil
	}
}

func (a *App) buildSource(ctx context.Context) (candidates.Source, error) {
	cfg := a.Config
	switch cfg.CandidateSource {
	case config.SourcePostgres:
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, &candidates.DataLoadError{Source: config.SourcePostgres, Index: -1, Reason: "connect", Err: err}
		}
		a.DB = sqlDB
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, &candidates.DataLoadError{Source: config.SourcePostgres, Index: -1, Reason: "migrate", Err: err}
		}
		return &candidates.PGSource{DB: sqlDB}, nil
	case config.SourceS3:
		src, err := candidates.NewS3Source(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Key)
		if err != nil {
			return nil, &candidates.DataLoadError{Source: config.SourceS3, Index: -1, Reason: "configure", Err: err}
		}
		return src, nil
	default:
		return candidates.EmbeddedSource{}, nil
	}
}

// buildGenerator never fails: a provider that cannot be constructed becomes
// a placeholder whose error surfaces per call.
func buildGenerator(ctx context.Context, cfg config.Config) llm.Generator {
	var (
		gen llm.Generator
		err error
	)
	switch cfg.LLMProvider {
	case config.ProviderNone:
		return llm.PlaceholderClient{Err: llm.ErrNotConfigured}
	case config.ProviderOpenAI:
		gen, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case config.ProviderVertex:
		gen, err = gemini.NewClient(ctx, gemini.Options{
			Vertex:   true,
			Project:  cfg.GoogleCloudProject,
			Location: cfg.GoogleCloudLocation,
			Model:    cfg.LLMModel,
			Timeout:  cfg.LLMTimeout,
		})
	default:
		gen, err = gemini.NewClient(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
	}
	if err != nil {
		telemetry.Warn("llm.provider_unavailable", map[string]any{
			"provider": cfg.LLMProvider,
			"err":      err,
		})
		if errors.Is(err, llm.ErrCredentialMissing) {
			return llm.PlaceholderClient{Err: llm.ErrCredentialMissing}
		}
		return llm.PlaceholderClient{Err: fmt.Errorf("%w: %v", llm.ErrNotConfigured, err)}
	}
	log.Printf("bootstrap: llm provider=%s model=%s", cfg.LLMProvider, cfg.LLMModel)
	return gen
}
