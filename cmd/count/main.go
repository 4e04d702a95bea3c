package main

import (
	"fmt"
	"os"
	"time"

	"careerflow/config"
	"careerflow/importer"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	var envPath, sourceDir, reportPath string

	cmd := &cobra.Command{
		Use:          "count",
		Short:        "List the expected source CSV files with their data row counts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if sourceDir == "" {
				sourceDir = cfg.SourceDir
			}

			startTime := time.Now()
			files := importer.Inventory(sourceDir)

			rows, present := 0, 0
			fmt.Printf("Source directory: %s\n\n", sourceDir)
			for _, f := range files {
				switch {
				case !f.Present:
					fmt.Printf("  %-26s missing\n", f.File)
				case f.Err != nil:
					fmt.Printf("  %-26s %s rows (read error: %v)\n", f.File, humanize.Comma(int64(f.Rows)), f.Err)
				default:
					fmt.Printf("  %-26s %s rows\n", f.File, humanize.Comma(int64(f.Rows)))
				}
				if f.Present {
					present++
					rows += f.Rows
				}
			}
			fmt.Printf("\nCounted %d/%d files, %s data rows in %v\n", present, len(files), humanize.Comma(int64(rows)), time.Since(startTime).Round(time.Millisecond))

			if reportPath == "" {
				return nil
			}
			out, err := os.Create(reportPath)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer out.Close()
			if err := importer.WriteInventoryMarkdown(out, sourceDir, files, time.Now()); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("Report written to %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&envPath, "env", ".env", "Path to an optional .env file")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Directory with the source CSV files (default: SOURCE_DIR)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Also write a markdown report to this path, e.g. count.md")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
