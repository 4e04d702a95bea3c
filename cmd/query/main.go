package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"careerflow/analyzer"
	"careerflow/config"
	"careerflow/logging"
	"careerflow/redis"
	"careerflow/retention"
	"careerflow/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type queryOptions struct {
	envPath     string
	databaseURL string
	resultsDir  string
	chartsDir   string
	logLevel    string
	xlsx        bool
	cleanupDays int
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:          "query",
		Short:        "Run the job-market analysis queries and save reports and charts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env", ".env", "Path to an optional .env file")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Database URL (default: DATABASE_URL)")
	cmd.Flags().StringVar(&opts.resultsDir, "results-dir", "", "Directory for CSV/XLSX reports (default: RESULTS_DIR)")
	cmd.Flags().StringVar(&opts.chartsDir, "charts-dir", "", "Directory for PNG charts (default: CHARTS_DIR)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL)")
	cmd.Flags().BoolVar(&opts.xlsx, "xlsx", false, "Also export all results into one analysis_<timestamp>.xlsx workbook")
	cmd.Flags().IntVar(&opts.cleanupDays, "cleanup-days", 0, "Before running, delete outputs older than N days (0 disables)")
	return cmd
}

func runQuery(ctx context.Context, opts queryOptions) error {
	cfg, err := config.Load(opts.envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if opts.resultsDir != "" {
		cfg.ResultsDir = opts.resultsDir
	}
	if opts.chartsDir != "" {
		cfg.ChartsDir = opts.chartsDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	fmt.Println("CareerFlow Analytics - job market analysis")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Started: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Database: %s\n", cfg.RedactedDatabaseURL())
	fmt.Printf("CSV results: %s\n", cfg.ResultsDir)
	fmt.Printf("PNG charts: %s\n", cfg.ChartsDir)
	fmt.Println(strings.Repeat("-", 80))

	db, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		printGuidance(cfg, err)
		return err
	}
	defer db.Close()

	a := analyzer.New(db, analyzer.Options{ResultsDir: cfg.ResultsDir, ChartsDir: cfg.ChartsDir, XLSX: opts.xlsx}, logger)
	a.SetOutput(os.Stdout)
	if _, err := a.TestConnection(ctx); err != nil {
		printGuidance(cfg, err)
		return err
	}

	if opts.cleanupDays > 0 {
		sweepOutputs(cfg, opts.cleanupDays, logger)
	}

	sum := a.Run(ctx)
	if sum.Interrupted {
		fmt.Println("\nAnalysis interrupted by user")
	} else {
		fmt.Println("\nAnalysis complete!")
	}
	fmt.Printf("Queries with results: %d/%d\n", sum.Succeeded, sum.Total)
	fmt.Println("Results saved to:")
	fmt.Printf("   CSV files: %s\n", cfg.ResultsDir)
	fmt.Printf("   PNG charts: %s\n", cfg.ChartsDir)
	if sum.Workbook != "" {
		fmt.Printf("   Workbook: %s\n", sum.Workbook)
	}

	redis.Publish(context.WithoutCancel(ctx), cfg, logger, sum.Snapshot())
	return nil
}

// sweepOutputs 分析前清理过期输出；尽力而为，失败只提示
func sweepOutputs(cfg *config.Config, days int, logger *zap.Logger) {
	rep, _ := retention.NewSweeper(logger).Sweep(retention.DefaultTargets(cfg.ResultsDir, cfg.ChartsDir), time.Duration(days)*24*time.Hour)
	if rep.Total() > 0 {
		fmt.Printf("Cleaned %d CSV, %d XLSX and %d PNG files (older than %d days)\n",
			rep.Deleted["csv"], rep.Deleted["xlsx"], rep.Deleted["png"], days)
	}
	for _, o := range rep.Failures() {
		fmt.Printf("Could not delete %s: %v\n", o.Path, o.Err)
	}
}

func printGuidance(cfg *config.Config, err error) {
	fmt.Printf("\nCould not connect to the database: %v\n", err)
	fmt.Println("Make sure that:")
	fmt.Printf("   - DATABASE_URL points to the right database (now: %s)\n", cfg.RedactedDatabaseURL())
	fmt.Println("   - the database server is running and the database exists")
	fmt.Println("   - the importer has been run so the jobs table is populated")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newQueryCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
