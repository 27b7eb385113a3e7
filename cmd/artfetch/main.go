// Command artfetch resolves and curates visual assets for game content.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shadowgov/artfetch/internal/adapters/driven/catalog"
	"github.com/shadowgov/artfetch/internal/adapters/driven/config/file"
	"github.com/shadowgov/artfetch/internal/adapters/driven/storage/sqlite"
	"github.com/shadowgov/artfetch/internal/adapters/driven/styler"
	"github.com/shadowgov/artfetch/internal/adapters/driving/cli"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/services"
	"github.com/shadowgov/artfetch/internal/logger"
	"github.com/shadowgov/artfetch/internal/providers/googleimages"
	"github.com/shadowgov/artfetch/internal/providers/official"
	"github.com/shadowgov/artfetch/internal/providers/pack"
	"github.com/shadowgov/artfetch/internal/providers/wikimedia"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore(os.Getenv("ARTFETCH_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	manifest, err := store.ManifestStore()
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	cache := store.QueryCache()
	if pruner, ok := cache.(interface {
		PruneExpired(context.Context) (int64, error)
	}); ok {
		if n, err := pruner.PruneExpired(context.Background()); err != nil {
			logger.Warn("pruning query cache: %v", err)
		} else if n > 0 {
			logger.Debug("pruned %d expired query cache rows", n)
		}
	}

	officialProvider, packProvider, providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}
	if packProvider != nil {
		defer packProvider.Close()
	}

	var officialLookup driven.OfficialLookup
	if officialProvider != nil {
		officialLookup = officialProvider
	}

	styleOpts := styleOptions(cfg)
	var style driven.Styler
	if cfg.GetBool("style.disabled") {
		style = styler.NewPassthrough()
	} else {
		style = styler.NewRaster()
	}

	flags := featureFlags(cfg)

	resolver := services.NewResolver(manifest, cache, style, officialLookup, providers, flags, styleOpts)

	var cardCatalog driven.CardCatalog
	if path := cfg.GetString("catalog.cards"); path != "" {
		cardCatalog = catalog.NewFile(path)
	} else {
		cardCatalog = catalog.NewStatic(nil)
	}
	reconciler := services.NewReconciler(manifest, cache, style, officialLookup, cardCatalog, styleOpts)

	cli.SetServices(cli.Services{
		Resolver:   resolver,
		Reconciler: reconciler,
		Manifest:   manifest,
		Config:     cfg,
	})

	return cli.Execute()
}

// buildProviders assembles the ranked provider registry from configuration.
func buildProviders(cfg driven.ConfigStore) (*official.Provider, *pack.Provider, []driven.Provider, error) {
	var providers []driven.Provider

	var officialProvider *official.Provider
	if path := cfg.GetString("providers.official.index"); path != "" {
		p, err := official.NewFromFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading official art index: %w", err)
		}
		officialProvider = p
		providers = append(providers, p)
	}

	var packProvider *pack.Provider
	if path := cfg.GetString("providers.pack.bundle"); path != "" {
		p, err := pack.NewFromFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading pack bundle: %w", err)
		}
		if err := p.Watch(); err != nil {
			logger.Warn("pack bundle hot-reload unavailable: %v", err)
		}
		packProvider = p
		providers = append(providers, p)
	}

	providers = append(providers, wikimedia.New())

	apiKey := cfg.GetString("providers.google.api_key")
	engineID := cfg.GetString("providers.google.engine_id")
	if apiKey != "" && engineID != "" {
		g, err := googleimages.New(context.Background(), apiKey, engineID)
		if err != nil {
			logger.Warn("google image search unavailable: %v", err)
		} else {
			providers = append(providers, g)
		}
	}

	return officialProvider, packProvider, providers, nil
}

// styleOptions reads the style treatment from configuration, falling back
// to the standard treatment per knob.
func styleOptions(cfg driven.ConfigStore) driven.StyleOptions {
	opts := styler.DefaultStyleOptions()
	if v := cfg.GetFloat("style.saturation"); v > 0 {
		opts.Saturation = v
	}
	if v := cfg.GetFloat("style.contrast"); v > 0 {
		opts.Contrast = v
	}
	if v := cfg.GetFloat("style.brightness"); v > 0 {
		opts.Brightness = v
	}
	if v := cfg.GetFloat("style.grain"); v > 0 {
		opts.Grain = v
	}
	if v := cfg.GetInt("style.width"); v > 0 {
		opts.Width = v
	}
	if v := cfg.GetInt("style.height"); v > 0 {
		opts.Height = v
	}
	return opts
}

// featureFlags reads the per-scope autofill gates. Card autofill defaults
// on; events and articles opt in.
func featureFlags(cfg driven.ConfigStore) services.FeatureFlags {
	flags := services.FeatureFlags{AutofillCard: true}
	if _, ok := cfg.Get("autofill.card"); ok {
		flags.AutofillCard = cfg.GetBool("autofill.card")
	}
	flags.AutofillEvent = cfg.GetBool("autofill.event")
	flags.AutofillArticle = cfg.GetBool("autofill.article")
	return flags
}
