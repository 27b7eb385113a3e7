// Package styler applies the house visual treatment to resolved art.
package styler

import (
	"context"

	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

var _ driven.Styler = (*Passthrough)(nil)

// Passthrough returns URLs unchanged. Used when styling is disabled or no
// raster pipeline is configured.
type Passthrough struct{}

// NewPassthrough creates a no-op styler.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Style returns the URL as-is.
func (p *Passthrough) Style(_ context.Context, url string, _ driven.StyleOptions) (string, error) {
	return url, nil
}
