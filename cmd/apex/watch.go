package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pace146/new-apex/internal/health"
	"github.com/pace146/new-apex/internal/metrics"
	"github.com/pace146/new-apex/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline on a schedule as the snapshot refreshes",
	Long: `Watch runs the full pipeline on a cron schedule against the configured
snapshot path, skipping runs when the file content has not changed since
the last successful pass. A health/readiness server exposes Prometheus
metrics while the watch is active.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch()
	},
}

func runWatch() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchCfg := cfg.Watch
	if f := rootCmd.PersistentFlags().Lookup("input"); f != nil && f.Changed {
		watchCfg.Input = inputPath
	}
	if watchCfg.OutputDir != "" {
		outputDir = watchCfg.OutputDir
	}

	var srv *health.Server
	if cfg.Metrics.Enabled {
		srv = health.NewServer(health.Config{
			ServiceName:    cfg.App.Name,
			Version:        Version,
			Commit:         GitCommit,
			Port:           cfg.Metrics.Port,
			MetricsPath:    cfg.Metrics.Path,
			MetricsHandler: metrics.Handler(),
			Logger:         lg,
		})
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
	}

	cacheTTL := time.Duration(watchCfg.CacheTTLSeconds) * time.Second
	sched := scheduler.New(lg, cacheTTL)
	err := sched.ScheduleCardRefresh(watchCfg.Schedule, watchCfg.Input, func(runCtx context.Context, path string) error {
		if err := runCard(runCtx, path); err != nil {
			return err
		}
		if srv != nil {
			srv.SetReady(true)
			srv.RecordRun(time.Now())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to schedule watch: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	lg.WithField("next_run", sched.NextRun().Format(time.RFC3339)).
		Info("Watch mode active, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		lg.WithField("signal", sig.String()).Info("Shutting down watch mode")
	case <-ctx.Done():
	}
	return nil
}
