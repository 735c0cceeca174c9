package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photomigrate/internal/fileutil"
	"photomigrate/internal/models"
	"photomigrate/internal/planlog"
)

var (
	dryRun    bool
	noConfirm bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Execute the latest import plan",
	Long: `Copy or convert the pending entries of the most recent plan into
the archive.

For each pending import entry the command:
1. Creates the target day folder under the archive directory
2. Converts HEIC to JPEG and MOV to MP4 via ffmpeg, or copies as-is
3. Marks the entry done, or records the failure and moves on

Source files are never modified or deleted.

Example:
  photomigrate process --dry-run   # Preview only
  photomigrate process             # Execute with confirmation
  photomigrate process --yes       # Execute without prompting`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without copying")
	processCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

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
		fmt.Println("Run 'photomigrate evaluate' first.")
		return nil
	}

	entries, err := store.EntriesByRun(run.ID)
	if err != nil {
		return err
	}

	var pending []models.PlanEntry
	for _, e := range entries {
		if e.Disposition == models.DispositionImport && e.Status == models.StatusPending {
			pending = append(pending, e)
		}
	}

	if len(pending) == 0 {
		fmt.Println("Nothing to process; all entries are done.")
		return nil
	}

	fmt.Printf("Will import %d files into %s\n\n", len(pending), cfg.ArchiveDir)

	if dryRun {
		for _, e := range pending {
			action := "copy"
			if e.Convert {
				action = "convert"
			}
			fmt.Printf("  %s %s -> %s\n", action, e.Source, filepath.Join(cfg.ArchiveDir, e.Folder, e.Name))
		}
		fmt.Println()
		fmt.Println("(Dry run - no files were modified)")
		return nil
	}

	if !noConfirm {
		fmt.Printf("Import %d files? [y/N]: ", len(pending))
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var processed, failed int
	for _, e := range pending {
		dest := filepath.Join(cfg.ArchiveDir, e.Folder, e.Name)
		err := importEntry(e, dest)
		if err != nil {
			logger.Warn("failed to import file", "source", e.Source, "error", err)
			store.UpdateStatus(e.ID, "error: "+err.Error())
			failed++
			continue
		}
		if err := store.UpdateStatus(e.ID, models.StatusDone); err != nil {
			return fmt.Errorf("failed to record status for %s: %w", e.Source, err)
		}
		processed++
	}

	fmt.Println()
	fmt.Printf("Imported %d files\n", processed)
	if failed > 0 {
		fmt.Printf("Failed: %d files (see 'photomigrate list' for details)\n", failed)
	}

	return nil
}

// importEntry materializes one plan entry in the archive.
func importEntry(e models.PlanEntry, dest string) error {
	if err := fileutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	if e.Convert {
		return fileutil.Convert(e.Source, dest)
	}
	return fileutil.CopyFileAtomic(e.Source, dest)
}
