package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

var (
	resolveName     string
	resolveFaction  string
	resolveType     string
	resolvePolicy   string
	resolveCredit   string
	resolveTitle    string
	resolveHeadline string
	resolveTags     []string
	resolveFallback string
	resolveForce    bool
	resolveJSON     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <scope> <id>",
	Short: "Resolve the display asset for a card, event or article",
	Long: `Resolves the display asset for a single domain object.

Scope is one of: card, event, article. The manifest is consulted first;
when it has no usable entry, ranked providers are queried, candidates are
license-filtered and ranked, and the winner is styled and persisted.

Examples:
  artfetch resolve card cryptid-mothman --name "Mothman" --faction cryptid --type Creature
  artfetch resolve event midnight-broadcast --title "Midnight Broadcast" --force
  artfetch resolve article ufo-sighting --title "Lights over the ridge" --tags ufo,night`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "card name (card scope)")
	resolveCmd.Flags().StringVar(&resolveFaction, "faction", "", "card faction (card scope)")
	resolveCmd.Flags().StringVar(&resolveType, "type", "", "card type (card scope)")
	resolveCmd.Flags().StringVar(&resolvePolicy, "art-policy", "", "card art policy: auto or manual (card scope)")
	resolveCmd.Flags().StringVar(&resolveCredit, "attribution", "", "curated credit line (card scope)")
	resolveCmd.Flags().StringVar(&resolveTitle, "title", "", "title (event and article scopes)")
	resolveCmd.Flags().StringVar(&resolveHeadline, "headline", "", "headline (event and article scopes)")
	resolveCmd.Flags().StringSliceVar(&resolveTags, "tags", nil, "extra search tags")
	resolveCmd.Flags().StringVar(&resolveFallback, "fallback-url", "", "URL persisted when no provider matches")
	resolveCmd.Flags().BoolVar(&resolveForce, "force", false, "re-run federation even when an entry exists")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output the resolved asset as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if resolverService == nil {
		return errors.New("resolver service not configured")
	}

	actx, err := buildContext(args[0], args[1])
	if err != nil {
		return err
	}

	resolved := resolverService.Resolve(context.Background(), actx, driving.ResolveOptions{
		ForceRefresh: resolveForce,
	})

	if resolved == nil {
		cmd.Println("No asset resolved; consumers should render a placeholder.")
		return nil
	}

	if resolveJSON {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling resolved asset: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Key:      %s\n", resolved.Key)
	cmd.Printf("URL:      %s\n", truncate(resolved.URL, 100))
	cmd.Printf("Styled:   %s\n", truncate(resolved.StyledURL, 100))
	cmd.Printf("Provider: %s\n", resolved.Provider)
	cmd.Printf("Source:   %s\n", resolved.Source)
	if resolved.Credit != "" {
		cmd.Printf("Credit:   %s\n", resolved.Credit)
	}
	if resolved.License != "" {
		cmd.Printf("License:  %s\n", resolved.License)
	}
	if resolved.Locked {
		cmd.Println("Locked:   yes")
	}
	return nil
}

// buildContext assembles an AssetContext from the scope argument and the
// scope-specific flags.
func buildContext(scopeArg, id string) (domain.AssetContext, error) {
	scope := domain.Scope(scopeArg)
	if !scope.IsValid() {
		return domain.AssetContext{}, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, scopeArg)
	}

	actx := domain.AssetContext{
		Scope:       scope,
		Tags:        resolveTags,
		FallbackURL: resolveFallback,
	}

	switch scope {
	case domain.ScopeCard:
		name := resolveName
		if name == "" {
			name = id
		}
		actx.Card = &domain.Card{
			ID:             id,
			Name:           name,
			Faction:        resolveFaction,
			Type:           resolveType,
			ArtPolicy:      resolvePolicy,
			ArtAttribution: resolveCredit,
		}
	case domain.ScopeEvent:
		actx.Event = &domain.Event{
			ID:       id,
			Title:    resolveTitle,
			Headline: resolveHeadline,
			Tags:     resolveTags,
		}
	case domain.ScopeArticle:
		actx.Article = &domain.Article{
			ID:       id,
			Title:    resolveTitle,
			Headline: resolveHeadline,
			Tags:     resolveTags,
		}
	}
	return actx, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
