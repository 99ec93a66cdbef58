package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/storage/filestore"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/storage/sqlitestore"
	"github.com/jsamuelsen/hourly-quotes/internal/app"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/config"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/logging"
	"github.com/jsamuelsen/hourly-quotes/internal/platform/telemetry"
	"github.com/jsamuelsen/hourly-quotes/internal/ports"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	profile string
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "quoted",
		Short:         "Hourly LLM-generated quotes",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.profile, "profile", defaultProfile(),
		"config profile, loaded from configs/<profile>.yaml")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env",
		"dotenv file loaded before the config; a missing file is ignored")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newServeCmd(opts),
		newBuildCmd(opts),
	)

	return cmd
}

func defaultProfile() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}

// quoteStore is what the commands need from either store driver.
type quoteStore interface {
	ports.QuoteStore
	ports.HealthChecker
}

// runtime holds what every command builds before doing its work: config,
// logging, telemetry and the quote store.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
	store  quoteStore

	closers []func(context.Context) error
}

// bootstrap loads the environment and config, then sets up logging,
// telemetry and the store. Close must be called on success.
func bootstrap(ctx context.Context, opts *rootOptions) (*runtime, error) {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", opts.envFile, err)
	}

	cfg, err := config.Load(opts.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Generation.Location()
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}

	logger := logging.New(logging.ConfigFrom(cfg))
	logging.SetDefault(logger)

	rt := &runtime{cfg: cfg, logger: logger, loc: loc}

	tel, err := telemetry.New(ctx, telemetry.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	rt.closers = append(rt.closers, tel.Shutdown)

	if err := rt.openStore(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context) error {
	switch rt.cfg.Store.Driver {
	case "sqlite":
		store, err := sqlitestore.Open(ctx, sqlitestore.Config{
			Path:     rt.cfg.Store.SQLitePath,
			Location: rt.loc,
			Logger:   rt.logger,
		})
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}

		rt.store = store
		rt.closers = append(rt.closers, func(context.Context) error { return store.Close() })

	default:
		store, err := filestore.New(filestore.Config{
			Dir:          rt.cfg.Store.Dir,
			Location:     rt.loc,
			WriteMirrors: rt.cfg.Store.WriteMirrors,
			Logger:       rt.logger,
		})
		if err != nil {
			return fmt.Errorf("opening file store: %w", err)
		}

		rt.store = store
	}

	rt.logger.Debug("quote store ready", slog.String("driver", rt.cfg.Store.Driver))

	return nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			rt.logger.Error("shutdown error", slog.Any("error", err))
		}
	}
}

func (rt *runtime) queryService() *app.QueryService {
	return app.NewQueryService(app.QueryServiceConfig{
		Store:           rt.store,
		Location:        rt.loc,
		ReadConcurrency: rt.cfg.Store.ReadConcurrency,
		Logger:          rt.logger,
	})
}

// generationService wires the OpenAI generator behind the instrumented
// client. It fails when no API key is configured.
func (rt *runtime) generationService() (*app.GenerationService, *acl.OpenAIGenerator, error) {
	if err := rt.cfg.OpenAI.RequireAPIKey(); err != nil {
		return nil, nil, err
	}

	hourly, err := rt.cfg.Generation.HourlyConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("hourly parameters: %w", err)
	}

	httpClient, err := clients.New(&clients.Config{
		ServiceName: rt.cfg.OpenAI.Name,
		Timeout:     rt.cfg.OpenAI.Timeout,
		Retry:       rt.cfg.Client.Retry,
		Circuit:     rt.cfg.Client.CircuitBreaker,
		Transport:   rt.cfg.Client.Transport,
		Logger:      rt.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	generator, err := acl.NewOpenAIGenerator(acl.OpenAIGeneratorConfig{
		Client: httpClient,
		OpenAI: rt.cfg.OpenAI,
		Logger: rt.logger,
	})
	if err != nil {
		return nil, nil, err
	}

	metrics, err := telemetry.NewGenerationMetrics()
	if err != nil {
		rt.logger.Warn("generation metrics unavailable", slog.Any("error", err))
	}

	return app.NewGenerationService(app.GenerationServiceConfig{
		Generator: generator,
		Store:     rt.store,
		Hourly:    hourly,
		Location:  rt.loc,
		Metrics:   metrics,
		Logger:    rt.logger,
	}), generator, nil
}
