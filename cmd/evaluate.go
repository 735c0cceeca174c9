package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photomigrate/internal/plan"
	"photomigrate/internal/planlog"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Build an import plan for the raw folders",
	Long: `Evaluate the configured raw folders against the archive.

The evaluation will:
1. Gather source and archive files (skipping Live Photo clips)
2. Resolve a capture timestamp for every file
3. Flag exact and near duplicates
4. Assign chronological day-stamped names to the rest

Nothing is copied or converted; the plan is stored in the database
for 'list' and 'process'.

Example:
  photomigrate evaluate
  photomigrate evaluate --config ./photomigrate.toml`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := planlog.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	result, err := plan.NewEvaluator(cfg, logger).Evaluate()
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	run := &planlog.Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		Imports:    result.Imports,
		Duplicates: result.Duplicates,
		Skipped:    result.Skipped,
	}
	if err := store.SaveRun(run, result.Entries); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	fmt.Println("=== Evaluation Complete ===")
	fmt.Printf("Run ID:      %s\n", run.ID)
	fmt.Printf("To import:   %d\n", result.Imports)
	fmt.Printf("Duplicates:  %d\n", result.Duplicates)
	fmt.Printf("No timestamp: %d (excluded)\n", result.Skipped)

	if result.Imports > 0 {
		fmt.Println()
		fmt.Println("Run 'photomigrate list' to inspect the plan")
		fmt.Println("Run 'photomigrate process --dry-run' to preview the import")
	}

	return nil
}
