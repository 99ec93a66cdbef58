package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/views"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/scheduler"
	"github.com/jsamuelsen/hourly-quotes/internal/ports"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and HTML views",
		Long: `Serve the JSON API under /api, the home and history pages, and the
operational endpoints under /-/. With the scheduler enabled the server also
generates a quote on the configured cron schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			if cmd.Flags().Changed("scheduler") {
				rt.cfg.Scheduler.Enabled = withScheduler
			}

			return serve(ctx, rt)
		},
	}

	cmd.Flags().BoolVar(&withScheduler, "scheduler", false, "generate on a schedule (overrides scheduler.enabled)")

	return cmd
}

func serve(ctx context.Context, rt *runtime) error {
	logger := rt.logger

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", rt.cfg.App.Environment),
		slog.String("timezone", rt.loc.String()))

	registry := ports.NewHealthRegistry()
	if err := registry.Register(rt.store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	var sched *scheduler.Scheduler

	if rt.cfg.Scheduler.Enabled {
		svc, generator, err := rt.generationService()
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}

		if err := registry.Register(generator); err != nil {
			return fmt.Errorf("registering generator health check: %w", err)
		}

		sched, err = scheduler.New(scheduler.Config{
			Name:       "generate",
			Spec:       rt.cfg.Scheduler.Spec,
			Location:   rt.loc,
			RunOnStart: rt.cfg.Scheduler.RunOnStart,
			Job: func(ctx context.Context) error {
				_, err := svc.Run(ctx)
				return err
			},
			Logger: logger,
		})
		if err != nil {
			return err
		}
	}

	tmpl, err := views.Parse(rt.loc)
	if err != nil {
		return err
	}

	reader := rt.queryService()

	server := http.New(&rt.cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   rt.cfg.App.Name,
		Templates:     tmpl,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		QuoteHandler:  handlers.NewQuoteHandler(reader),
		PageHandler:   handlers.NewPageHandler(reader, rt.cfg.Site.Title),
		Timeout:       http.DefaultRequestTimeout,
	})

	serverErr := server.Start()

	if sched != nil {
		sched.Start(ctx)
	}

	var runErr error

	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", rt.cfg.Server.ShutdownTimeout))

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Warn("scheduler did not stop cleanly", slog.Any("error", err))
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	logger.Info("shutdown complete")

	return runErr
}
