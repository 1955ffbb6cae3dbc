package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/engine"
)

var (
	scheduleOnce   bool
	scheduleDryRun bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run decision cycles for every active project on an interval",
	Long:  "Runs the swap, strike zone and conflict cycles for all active projects immediately and then every CYCLE_INTERVAL. With --once a single round runs and its reports are printed as JSON.",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleOnce, "once", false, "Run one round and exit")
	scheduleCmd.Flags().BoolVar(&scheduleDryRun, "dry-run", false, "Log redirect directives instead of writing them")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, scheduleDryRun)
	if err != nil {
		return err
	}
	defer rt.Close()

	if scheduleOnce {
		reports, err := rt.engine.RunAll(ctx)
		if werr := writeJSON(cmd.OutOrStdout(), "", reports); werr != nil {
			return werr
		}
		return err
	}
	return engine.NewScheduler(rt.engine, rt.cfg.CycleInterval, logger.Named("scheduler")).Start(ctx)
}
