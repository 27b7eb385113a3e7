package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

// ResolveInput is the input schema for the resolve_asset tool.
type ResolveInput struct {
	Scope        string   `json:"scope" jsonschema:"scope of the object: card, event or article"`
	ID           string   `json:"id" jsonschema:"stable identifier of the object"`
	Name         string   `json:"name,omitempty" jsonschema:"card name, used for query terms"`
	Faction      string   `json:"faction,omitempty" jsonschema:"card faction"`
	Type         string   `json:"type,omitempty" jsonschema:"card type"`
	Title        string   `json:"title,omitempty" jsonschema:"event or article title"`
	Headline     string   `json:"headline,omitempty" jsonschema:"event or article headline"`
	Tags         []string `json:"tags,omitempty" jsonschema:"extra search tags"`
	FallbackURL  string   `json:"fallback_url,omitempty" jsonschema:"URL persisted when no provider matches"`
	ForceRefresh bool     `json:"force_refresh,omitempty" jsonschema:"re-run federation even when an entry exists"`
}

// ResolveOutput is the output schema for the resolve_asset tool.
type ResolveOutput struct {
	Resolved bool                  `json:"resolved"`
	Asset    *domain.ResolvedAsset `json:"asset,omitempty"`
}

// EntryInput is the input schema for the get_manifest_entry tool.
type EntryInput struct {
	Key string `json:"key" jsonschema:"manifest key in the form scope:id"`
}

// EntryOutput is the output schema for the get_manifest_entry tool.
type EntryOutput struct {
	Found bool                  `json:"found"`
	Entry *domain.ManifestEntry `json:"entry,omitempty"`
}

// ListInput is the input schema for the list_manifest tool.
type ListInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"only list entries of this scope"`
}

// ListOutput is the output schema for the list_manifest tool.
type ListOutput struct {
	Entries []domain.ManifestEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// RelockInput is the input schema for the relock_manifest tool.
type RelockInput struct {
	CleanupDownloads bool `json:"cleanup_downloads,omitempty" jsonschema:"drop download-sourced card entries that were not upgraded"`
	KeepQueryCache   bool `json:"keep_query_cache,omitempty" jsonschema:"skip flushing the query cache"`
}

// RelockOutput is the output schema for the relock_manifest tool.
type RelockOutput struct {
	Report *driving.ReconcileReport `json:"report"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_asset",
		Description: "Resolve the display asset for a card, event or article",
	}, s.handleResolve)

	if s.ports.Manifest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_manifest_entry",
			Description: "Fetch a single manifest entry by key",
		}, s.handleEntry)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_manifest",
			Description: "List manifest entries, newest first",
		}, s.handleList)
	}

	if s.ports.Reconciler != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "relock_manifest",
			Description: "Reconcile the manifest against the official art index",
		}, s.handleRelock)
	}
}

// handleResolve handles the resolve_asset tool invocation.
func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	scope := domain.Scope(input.Scope)
	if !scope.IsValid() {
		return nil, ResolveOutput{}, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, input.Scope)
	}

	actx := domain.AssetContext{
		Scope:       scope,
		Tags:        input.Tags,
		FallbackURL: input.FallbackURL,
	}
	switch scope {
	case domain.ScopeCard:
		name := input.Name
		if name == "" {
			name = input.ID
		}
		actx.Card = &domain.Card{ID: input.ID, Name: name, Faction: input.Faction, Type: input.Type}
	case domain.ScopeEvent:
		actx.Event = &domain.Event{ID: input.ID, Title: input.Title, Headline: input.Headline, Tags: input.Tags}
	case domain.ScopeArticle:
		actx.Article = &domain.Article{ID: input.ID, Title: input.Title, Headline: input.Headline, Tags: input.Tags}
	}

	resolved := s.ports.Resolver.Resolve(ctx, actx, driving.ResolveOptions{ForceRefresh: input.ForceRefresh})
	return nil, ResolveOutput{Resolved: resolved != nil, Asset: resolved}, nil
}

// handleEntry handles the get_manifest_entry tool invocation.
func (s *Server) handleEntry(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EntryInput,
) (*mcp.CallToolResult, EntryOutput, error) {
	entry := s.ports.Manifest.Get(ctx, input.Key)
	return nil, EntryOutput{Found: entry != nil, Entry: entry}, nil
}

// handleList handles the list_manifest tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	entries := s.ports.Manifest.GetAll(ctx)
	if input.Scope != "" {
		scope := domain.Scope(input.Scope)
		if !scope.IsValid() {
			return nil, ListOutput{}, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, input.Scope)
		}
		filtered := make([]domain.ManifestEntry, 0, len(entries))
		for _, e := range entries {
			if e.Scope == scope {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return nil, ListOutput{Entries: entries, Count: len(entries)}, nil
}

// handleRelock handles the relock_manifest tool invocation.
func (s *Server) handleRelock(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RelockInput,
) (*mcp.CallToolResult, RelockOutput, error) {
	report, err := s.ports.Reconciler.Reconcile(ctx, driving.ReconcileOptions{
		CleanupDownloads: input.CleanupDownloads,
		KeepQueryCache:   input.KeepQueryCache,
	})
	if err != nil {
		return nil, RelockOutput{}, err
	}
	return nil, RelockOutput{Report: report}, nil
}
