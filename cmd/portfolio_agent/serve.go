package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/keyword-portfolio/internal/config"
	"github.com/jonathan/keyword-portfolio/internal/engine"
	"github.com/jonathan/keyword-portfolio/internal/server"
)

var (
	servePort     int
	serveSchedule bool
	serveDryRun   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing portfolio reads, project management, cycle triggers and metrics. With --schedule the cycle scheduler runs in the same process.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from SERVER_PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveSchedule, "schedule", false, "Also run the cycle scheduler")
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "Log redirect directives instead of writing them")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, serveDryRun)
	if err != nil {
		return err
	}
	defer rt.Close()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	port := rt.cfg.ServerPort
	if servePort != 0 {
		port = servePort
	}
	srv, err := server.New(server.Config{
		Port:     port,
		Store:    rt.db,
		Engine:   rt.engine,
		Metrics:  rt.metrics,
		JWT:      server.NewJWTService(jwtConfig),
		Tuning:   *rt.tuning,
		Capacity: rt.cfg.PortfolioCapacity,
		Ping:     rt.db.Ping,
		Logger:   logger.Named("server"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gCtx) })
	if serveSchedule {
		scheduler := engine.NewScheduler(rt.engine, rt.cfg.CycleInterval, logger.Named("scheduler"))
		g.Go(func() error { return scheduler.Start(gCtx) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
