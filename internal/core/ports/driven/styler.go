package driven

import "context"

// StyleOptions configures the house visual style transform.
// Zero values mean "use the pipeline default".
type StyleOptions struct {
	// Width and Height set target dimensions. Zero keeps the source size.
	Width  int
	Height int

	// Saturation, Contrast and Brightness are multipliers, 1.0 = unchanged.
	Saturation float64
	Contrast   float64
	Brightness float64

	// Grain is the additive noise intensity in [0, 1]. Zero disables grain.
	Grain float64
}

// Styler normalizes a source image to the house visual style.
//
// Implementations with no raster capability return the input URL unchanged.
// Callers must treat any error as "use the unstyled URL": styling failure
// never aborts resolution.
type Styler interface {
	// Style transforms the image at url and returns a self-contained
	// representation of the result (a data URL), or the input url
	// unchanged for passthrough implementations.
	Style(ctx context.Context, url string, opts StyleOptions) (string, error)
}
