package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shadowgov/artfetch/internal/core/domain"
)

var (
	manifestListScope string
	manifestListJSON  bool
	manifestClearAll  bool
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect and curate the asset manifest",
}

var manifestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manifest entries, newest first",
	RunE:  runManifestList,
}

var manifestGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a single manifest entry",
	Long:  `Shows a manifest entry by key. Keys have the form "scope:id", e.g. "card:cryptid-mothman".`,
	Args:  cobra.ExactArgs(1),
	RunE:  runManifestGet,
}

var manifestCreditCmd = &cobra.Command{
	Use:   "credit <key> <credit>",
	Short: "Edit the attribution line of an entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runManifestCredit,
}

var manifestLockCmd = &cobra.Command{
	Use:   "lock <key>",
	Short: "Lock an entry against automatic replacement",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLock(cmd, args[0], true) },
}

var manifestUnlockCmd = &cobra.Command{
	Use:   "unlock <key>",
	Short: "Release the manual lock on an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLock(cmd, args[0], false) },
}

var manifestClearCmd = &cobra.Command{
	Use:   "clear [scope]",
	Short: "Drop manifest entries",
	Long: `Drops all entries of a scope (card, event, article). Use --all to drop
the whole manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManifestClear,
}

func init() {
	manifestListCmd.Flags().StringVar(&manifestListScope, "scope", "", "only list entries of this scope")
	manifestListCmd.Flags().BoolVar(&manifestListJSON, "json", false, "output entries as JSON")
	manifestClearCmd.Flags().BoolVar(&manifestClearAll, "all", false, "drop every entry regardless of scope")

	manifestCmd.AddCommand(manifestListCmd)
	manifestCmd.AddCommand(manifestGetCmd)
	manifestCmd.AddCommand(manifestCreditCmd)
	manifestCmd.AddCommand(manifestLockCmd)
	manifestCmd.AddCommand(manifestUnlockCmd)
	manifestCmd.AddCommand(manifestClearCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestList(cmd *cobra.Command, _ []string) error {
	if manifestStore == nil {
		return errors.New("manifest store not configured")
	}

	entries := manifestStore.GetAll(context.Background())
	if manifestListScope != "" {
		scope := domain.Scope(manifestListScope)
		if !scope.IsValid() {
			return fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, manifestListScope)
		}
		filtered := entries[:0]
		for _, e := range entries {
			if e.Scope == scope {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if manifestListJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling entries: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("Manifest is empty.")
		return nil
	}

	for _, e := range entries {
		flags := make([]string, 0, 2)
		if e.Locked {
			flags = append(flags, "locked")
		}
		flags = append(flags, string(e.Source))
		cmd.Printf("  %-40s %-12s [%s]\n", e.Key, e.Provider, strings.Join(flags, ", "))
	}
	cmd.Printf("%d entries.\n", len(entries))
	return nil
}

func runManifestGet(cmd *cobra.Command, args []string) error {
	if manifestStore == nil {
		return errors.New("manifest store not configured")
	}

	entry := manifestStore.Get(context.Background(), args[0])
	if entry == nil {
		return fmt.Errorf("%w: no manifest entry for %q", domain.ErrNotFound, args[0])
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling entry: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runManifestCredit(cmd *cobra.Command, args []string) error {
	if manifestStore == nil {
		return errors.New("manifest store not configured")
	}

	key, credit := args[0], args[1]
	if manifestStore.Get(context.Background(), key) == nil {
		return fmt.Errorf("%w: no manifest entry for %q", domain.ErrNotFound, key)
	}

	manifestStore.UpdateCredit(context.Background(), key, credit)
	cmd.Printf("Credit updated for %s.\n", key)
	return nil
}

func setLock(cmd *cobra.Command, key string, locked bool) error {
	if manifestStore == nil {
		return errors.New("manifest store not configured")
	}

	if manifestStore.Get(context.Background(), key) == nil {
		return fmt.Errorf("%w: no manifest entry for %q", domain.ErrNotFound, key)
	}

	manifestStore.ToggleLock(context.Background(), key, locked)
	if locked {
		cmd.Printf("Locked %s.\n", key)
	} else {
		cmd.Printf("Unlocked %s.\n", key)
	}
	return nil
}

func runManifestClear(cmd *cobra.Command, args []string) error {
	if manifestStore == nil {
		return errors.New("manifest store not configured")
	}

	var scope domain.Scope
	switch {
	case manifestClearAll:
		// empty scope clears everything
	case len(args) == 1:
		scope = domain.Scope(args[0])
		if !scope.IsValid() {
			return fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, args[0])
		}
	default:
		return errors.New("specify a scope or --all")
	}

	manifestStore.Clear(context.Background(), scope)
	if scope == "" {
		cmd.Println("Manifest cleared.")
	} else {
		cmd.Printf("Cleared %s entries.\n", scope)
	}
	return nil
}
