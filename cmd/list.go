package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"photomigrate/internal/models"
	"photomigrate/internal/planlog"
)

var (
	listDuplicates bool
	listPending    bool
	listLimit      int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the latest import plan",
	Long: `Display the entries of the most recent evaluation run.

Each entry shows the source file, its capture timestamp, the target
day folder and name, and whether a format conversion is needed.
Duplicates carry "-" as their target name.

Example:
  photomigrate list                # Full plan
  photomigrate list --duplicates   # Flagged duplicates only
  photomigrate list --pending      # Entries not yet processed
  photomigrate list -n 20          # First 20 entries`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listDuplicates, "duplicates", false, "Show only duplicate entries")
	listCmd.Flags().BoolVar(&listPending, "pending", false, "Show only pending entries")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Limit number of entries (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := planlog.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	run, err := store.LatestRun()
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Println("No evaluation runs found.")
		fmt.Println("Run 'photomigrate evaluate' to build a plan.")
		return nil
	}

	entries, err := store.EntriesByRun(run.ID)
	if err != nil {
		return err
	}

	var filtered []models.PlanEntry
	for _, e := range entries {
		if listDuplicates && e.Disposition != models.DispositionDuplicate {
			continue
		}
		if listPending && e.Status != models.StatusPending {
			continue
		}
		filtered = append(filtered, e)
	}
	total := len(filtered)
	if listLimit > 0 && listLimit < len(filtered) {
		filtered = filtered[:listLimit]
	}

	fmt.Printf("Run %s (%s): %d to import, %d duplicates, %d without timestamp\n\n",
		run.ID, run.StartedAt.Format("2006-01-02 15:04:05"),
		run.Imports, run.Duplicates, run.Skipped)

	if len(filtered) == 0 {
		fmt.Println("No matching entries.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Captured", "Target", "Disposition", "Convert", "Status"})
	for _, e := range filtered {
		target := e.Name
		if e.Disposition == models.DispositionImport {
			target = e.Folder + "/" + e.Name
		}
		convert := ""
		if e.Convert {
			convert = "yes"
		}
		t.AppendRow(table.Row{
			e.Source,
			e.CapturedAt.Format("2006-01-02 15:04:05"),
			target,
			string(e.Disposition),
			convert,
			e.Status,
		})
	}
	t.Render()

	if len(filtered) < total {
		fmt.Printf("\nShowing %d of %d entries\n", len(filtered), total)
	}

	return nil
}
