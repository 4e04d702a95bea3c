package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"careerflow/config"
	"careerflow/importer"
	"careerflow/logging"
	"careerflow/redis"
	"careerflow/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type importOptions struct {
	envPath     string
	databaseURL string
	sourceDir   string
	logLevel    string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:          "importer",
		Short:        "Load job-posting CSV extracts into the database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env", ".env", "Path to an optional .env file")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Database URL (default: DATABASE_URL)")
	cmd.Flags().StringVar(&opts.sourceDir, "source-dir", "", "Directory with the source CSV files (default: SOURCE_DIR)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL)")
	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	cfg, err := config.Load(opts.envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if opts.sourceDir != "" {
		cfg.SourceDir = opts.sourceDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database unavailable", zap.String("database", cfg.RedactedDatabaseURL()), zap.Error(err))
		return err
	}
	defer db.Close()
	logger.Info("importer started",
		zap.String("database", cfg.RedactedDatabaseURL()),
		zap.String("dialect", string(db.Dialect())),
		zap.String("source", cfg.SourceDir))

	im := importer.New(db, cfg.SourceDir, logger)
	im.SetOutput(os.Stdout)
	sum := im.Run(ctx)
	if ctx.Err() != nil {
		fmt.Println("\nImport interrupted by user")
	}

	redis.Publish(context.WithoutCancel(ctx), cfg, logger, sum.Snapshot())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
