// Package pack serves the curated local fallback bundle.
//
// The bundle maps card-id patterns to art shipped with an expansion pack.
// It exists for themed cards (cryptids, seasonal sets) whose art must never
// come from an external search, and it answers with locked candidates so
// federation stops there.
package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// Rule is one bundle entry. A card matches when its lowercased ID has any
// listed prefix or contains any listed substring.
type Rule struct {
	Prefixes []string `json:"prefixes,omitempty"`
	Contains []string `json:"contains,omitempty"`
	URL      string   `json:"url"`
	Credit   string   `json:"credit,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Bundle is the on-disk pack format.
type Bundle struct {
	Rules []Rule `json:"rules"`
}

// Provider matches card contexts against the bundle. When constructed with
// Watch, the bundle file is hot-reloaded on change so new expansion packs
// apply without a restart.
type Provider struct {
	mu      sync.RWMutex
	rules   []Rule
	path    string
	watcher *fsnotify.Watcher
}

// New creates a pack provider over in-memory rules.
func New(rules []Rule) *Provider {
	return &Provider{rules: rules}
}

// NewFromFile loads the bundle from a JSON file. A missing file yields an
// empty bundle.
func NewFromFile(path string) (*Provider, error) {
	p := &Provider{path: path}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Watch starts hot-reloading the bundle file. Call Close to stop.
func (p *Provider) Watch() error {
	if p.path == "" {
		return fmt.Errorf("pack provider has no bundle file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating bundle watcher: %w", err)
	}
	if err := watcher.Add(p.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watching bundle %s: %w", p.path, err)
	}
	p.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := p.reload(); err != nil {
					logger.Warn("pack bundle reload failed, keeping previous rules: %v", err)
					continue
				}
				logger.Info("pack bundle reloaded from %s", p.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("pack bundle watcher: %v", err)
			}
		}
	}()

	return nil
}

// Close stops the bundle watcher, if any.
func (p *Provider) Close() error {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.Close()
}

func (p *Provider) reload() error {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		p.mu.Lock()
		p.rules = nil
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading pack bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("parsing pack bundle: %w", err)
	}

	p.mu.Lock()
	p.rules = bundle.Rules
	p.mu.Unlock()
	return nil
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return "pack"
}

// Priority places the pack right after official art.
func (p *Provider) Priority() int {
	return 1
}

// Authoritative pack art is curated; the license filter does not apply.
func (p *Provider) Authoritative() bool {
	return true
}

// ShouldSkip rejects everything but card contexts.
func (p *Provider) ShouldSkip(actx domain.AssetContext) bool {
	return actx.Scope != domain.ScopeCard || actx.Card == nil
}

// Fetch returns the first matching bundle rule as a locked candidate.
func (p *Provider) Fetch(_ context.Context, _ domain.QueryPlan, actx domain.AssetContext) ([]domain.AssetCandidate, error) {
	if actx.Card == nil {
		return nil, nil
	}

	rule := p.match(actx.Card.ID)
	if rule == nil {
		return nil, nil
	}

	credit := rule.Credit
	if credit == "" {
		credit = actx.Card.ArtAttribution
	}
	tags := rule.Tags
	if len(tags) == 0 {
		tags = actx.Card.ArtTags
	}

	return []domain.AssetCandidate{{
		ID:       "pack-" + actx.Card.ID + "-" + uuid.NewString()[:8],
		URL:      rule.URL,
		Provider: p.ID(),
		Credit:   credit,
		Tags:     tags,
		Locked:   true,
	}}, nil
}

func (p *Provider) match(cardID string) *Rule {
	lower := strings.ToLower(cardID)

	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := range p.rules {
		rule := &p.rules[i]
		for _, prefix := range rule.Prefixes {
			if strings.HasPrefix(lower, strings.ToLower(prefix)) {
				return rule
			}
		}
		for _, sub := range rule.Contains {
			if strings.Contains(lower, strings.ToLower(sub)) {
				return rule
			}
		}
	}
	return nil
}
