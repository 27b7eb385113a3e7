package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

var (
	relockCleanup   bool
	relockKeepCache bool
	relockJSON      bool
)

var relockCmd = &cobra.Command{
	Use:   "relock",
	Short: "Reconcile the manifest against the official art index",
	Long: `Walks the full card catalogue and upgrades every card whose official
art is now available to a locked official entry. Entries that cannot be
upgraded are preserved. The manifest is committed in a single atomic swap
and the query cache is flushed.

The job is idempotent: re-running it over an already-reconciled manifest
changes nothing but timestamps.`,
	RunE: runRelock,
}

func init() {
	relockCmd.Flags().BoolVar(&relockCleanup, "cleanup-downloads", false, "drop download-sourced card entries that were not upgraded")
	relockCmd.Flags().BoolVar(&relockKeepCache, "keep-query-cache", false, "skip flushing the query cache")
	relockCmd.Flags().BoolVar(&relockJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(relockCmd)
}

func runRelock(cmd *cobra.Command, _ []string) error {
	if reconcilerService == nil {
		return errors.New("reconciler service not configured")
	}

	report, err := reconcilerService.Reconcile(context.Background(), driving.ReconcileOptions{
		CleanupDownloads: relockCleanup,
		KeepQueryCache:   relockKeepCache,
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if relockJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Reconciliation complete.")
	cmd.Printf("  Processed:         %d\n", report.Processed)
	cmd.Printf("  Relocked:          %d\n", report.Relocked)
	cmd.Printf("  Skipped:           %d\n", report.Skipped)
	cmd.Printf("  Preserved:         %d\n", report.Preserved)
	cmd.Printf("  Downloads removed: %d\n", report.DownloadsRemoved)
	cmd.Printf("  Manifest entries:  %d\n", report.TotalEntries)
	cmd.Printf("  Cache cleared:     %t\n", report.CacheCleared)
	cmd.Printf("  Duration:          %s\n", report.Duration)

	if len(report.Errors) > 0 {
		cmd.Printf("  Errors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			cmd.Printf("    %s: %s\n", e.CardID, e.Message)
		}
	}
	return nil
}
