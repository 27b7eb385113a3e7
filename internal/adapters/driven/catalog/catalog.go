// Package catalog loads the card catalog used by the reconciliation job.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

var _ driven.CardCatalog = (*File)(nil)

// File reads the full card list from a JSON file on every call, so catalog
// edits between runs are picked up without a restart.
type File struct {
	path string
}

// NewFile creates a catalog over a JSON card file.
func NewFile(path string) *File {
	return &File{path: path}
}

// Cards returns every card in the catalog.
func (f *File) Cards(_ context.Context) ([]domain.Card, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading card catalog: %w", err)
	}

	var cards []domain.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parsing card catalog: %w", err)
	}
	return cards, nil
}

// Static is a fixed in-memory catalog. Used in tests and as a fallback when
// no catalog file is configured.
type Static struct {
	cards []domain.Card
}

var _ driven.CardCatalog = (*Static)(nil)

// NewStatic creates a catalog over a fixed card list.
func NewStatic(cards []domain.Card) *Static {
	return &Static{cards: cards}
}

// Cards returns the fixed card list.
func (s *Static) Cards(_ context.Context) ([]domain.Card, error) {
	return s.cards, nil
}
