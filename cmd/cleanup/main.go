package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"careerflow/config"
	"careerflow/logging"
	"careerflow/model"
	"careerflow/redis"
	"careerflow/retention"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cleanupOptions struct {
	envPath    string
	days       int
	resultsDir string
	chartsDir  string
	strict     bool
}

func newCleanupCmd() *cobra.Command {
	var opts cleanupOptions

	cmd := &cobra.Command{
		Use:          "cleanup",
		Short:        "Delete report and chart files older than N days",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// 未显式给出的参数取配置值（配置默认与参数默认一致）
			if !cmd.Flags().Changed("days") {
				opts.days = cfg.RetentionDays
			}
			if !cmd.Flags().Changed("results-dir") {
				opts.resultsDir = cfg.ResultsDir
			}
			if !cmd.Flags().Changed("charts-dir") {
				opts.chartsDir = cfg.ChartsDir
			}
			if opts.days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			return runCleanup(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env", ".env", "Path to an optional .env file")
	cmd.Flags().IntVar(&opts.days, "days", 7, "Delete files older than N days")
	cmd.Flags().StringVar(&opts.resultsDir, "results-dir", "results", "Directory with CSV/XLSX reports")
	cmd.Flags().StringVar(&opts.chartsDir, "charts-dir", "charts", "Directory with PNG charts")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Stop at the first failed deletion and exit non-zero")
	return cmd
}

func runCleanup(ctx context.Context, cfg *config.Config, opts cleanupOptions) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	started := time.Now()
	sweeper := retention.NewSweeper(logger)
	sweeper.Strict = opts.strict
	rep, sweepErr := sweeper.Sweep(retention.DefaultTargets(opts.resultsDir, opts.chartsDir), time.Duration(opts.days)*24*time.Hour)

	for _, o := range rep.Outcomes {
		switch o.Status {
		case retention.Deleted:
			fmt.Printf("Deleted %s: %s\n", strings.ToUpper(o.Category), filepath.Base(o.Path))
		case retention.Failed:
			fmt.Printf("Failed to delete %s: %v\n", o.Path, o.Err)
		}
	}
	fmt.Println("\nCleanup finished!")
	fmt.Printf("   CSV files deleted: %d\n", rep.Deleted["csv"])
	fmt.Printf("   XLSX files deleted: %d\n", rep.Deleted["xlsx"])
	fmt.Printf("   PNG files deleted: %d\n", rep.Deleted["png"])
	if n := len(rep.Failures()); n > 0 {
		fmt.Printf("   Failures: %d\n", n)
	}

	redis.Publish(ctx, cfg, logger, snapshot(rep, started))
	if sweepErr != nil {
		logger.Error("cleanup stopped", zap.Error(sweepErr))
		return sweepErr
	}
	return nil
}

func snapshot(rep *retention.Report, started time.Time) *model.RunSnapshot {
	snap := &model.RunSnapshot{
		RunID:      uuid.NewString(),
		Stage:      model.StageCleanup,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Succeeded:  rep.Total(),
		Total:      rep.Total() + len(rep.Failures()),
	}
	for _, cat := range []string{"csv", "xlsx", "png"} {
		snap.Units = append(snap.Units, model.UnitSnapshot{Name: cat, Status: "ok", Rows: rep.Deleted[cat]})
	}
	for _, o := range rep.Failures() {
		snap.Units = append(snap.Units, model.UnitSnapshot{Name: o.Path, Status: "failed", Message: o.Err.Error()})
	}
	return snap
}

func main() {
	if err := newCleanupCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
