// Package cli provides the command line interface for artfetch.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
	"github.com/shadowgov/artfetch/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Services injected by the composition root before Execute.
var (
	resolverService   driving.ResolverService
	reconcilerService driving.ReconcilerService
	manifestStore     driven.ManifestStore
	configStore       driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "artfetch",
	Short: "Resolve and curate visual assets for cards, events and articles",
	Long: `artfetch resolves display art for game content by federating ranked
providers (official art index, curated packs, external image search),
filtering candidates by license, applying the house style treatment and
maintaining a persistent asset manifest.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services aggregates everything the CLI needs from the composition root.
type Services struct {
	Resolver   driving.ResolverService
	Reconciler driving.ReconcilerService
	Manifest   driven.ManifestStore
	Config     driven.ConfigStore
}

// SetServices wires the services used by the commands.
func SetServices(s Services) {
	resolverService = s.Resolver
	reconcilerService = s.Reconciler
	manifestStore = s.Manifest
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
