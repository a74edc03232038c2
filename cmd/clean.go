package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anoixa/taskboard/internal/app"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/anoixa/taskboard/utils/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanCmd 清理没有数据库记录的存储文件
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stored files that no attachment references",
	Long: `Remove stored files that no attachment references.
Files newer than --grace are kept so uploads in flight are not touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		grace, _ := cmd.Flags().GetDuration("grace")

		if err := runClean(dryRun, grace); err != nil {
			fmt.Fprintf(os.Stderr, "Clean failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "Only show what would be cleaned, don't actually delete")
	cleanCmd.Flags().Duration("grace", time.Hour, "Keep files modified within this period")
}

// runClean 执行清理
func runClean(dryRun bool, grace time.Duration) error {
	cfg, log := loadConfig()
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	container := app.NewContainer(cfg, log)
	if err := container.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	report, err := container.Sweeper().Sweep(ctx, grace, dryRun)
	if report != nil {
		printSweepReport(report, dryRun)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		log.Warn("some orphaned files could not be removed", zap.Int("failed", report.Failed))
		return fmt.Errorf("failed to remove %d files", report.Failed)
	}
	return nil
}

func printSweepReport(report *attachment.SweepReport, dryRun bool) {
	if dryRun {
		for _, p := range report.OrphanedList {
			fmt.Printf("[DRY-RUN] Would delete %s\n", p)
		}
	}

	fmt.Println("========== Clean Summary ==========")
	fmt.Printf("Scanned files:  %d\n", report.Scanned)
	fmt.Printf("Orphaned files: %d\n", report.Orphaned)
	if dryRun {
		fmt.Println("No files were deleted (dry run)")
		return
	}
	fmt.Printf("Removed files:  %d (%s)\n", report.Removed, format.HumanReadableSize(report.FreedBytes))
	fmt.Printf("Failed:         %d\n", report.Failed)
}
