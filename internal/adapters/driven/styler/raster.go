package styler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/logger"
)

var _ driven.Styler = (*Raster)(nil)

const maxImageBytes = 16 << 20

// DefaultStyleOptions is the standard house treatment.
func DefaultStyleOptions() driven.StyleOptions {
	return driven.StyleOptions{
		Saturation: 1.1,
		Contrast:   1.05,
		Brightness: 1.05,
		Grain:      0.08,
	}
}

// Raster downloads an image, applies the saturation, contrast, brightness and
// grain adjustments, and returns the result as a PNG data URL.
type Raster struct {
	httpClient *http.Client
	grainSeed  int64
}

// NewRaster creates a raster styler.
func NewRaster() *Raster {
	return &Raster{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		grainSeed:  time.Now().UnixNano(),
	}
}

// Style fetches the source image and applies the treatment in opts. Zero
// adjustment values leave the corresponding channel untouched.
func (s *Raster) Style(ctx context.Context, url string, opts driven.StyleOptions) (string, error) {
	img, err := s.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if opts.Width > 0 || opts.Height > 0 {
		img = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}
	// imaging adjustments take percentages in -100..100; options use
	// multipliers around 1.0.
	if opts.Saturation != 0 && opts.Saturation != 1 {
		img = imaging.AdjustSaturation(img, (opts.Saturation-1)*100)
	}
	if opts.Contrast != 0 && opts.Contrast != 1 {
		img = imaging.AdjustContrast(img, (opts.Contrast-1)*100)
	}
	if opts.Brightness != 0 && opts.Brightness != 1 {
		img = imaging.AdjustBrightness(img, (opts.Brightness-1)*100)
	}
	if opts.Grain > 0 {
		img = applyGrain(img, opts.Grain, s.grainSeed)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding styled image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Raster) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	logger.Debug("styling image from %s (%dx%d)", url, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// applyGrain adds uniform monochrome noise scaled by intensity.
func applyGrain(img image.Image, intensity float64, seed int64) image.Image {
	bounds := img.Bounds()
	out := imaging.Clone(img)
	rng := rand.New(rand.NewSource(seed))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			noise := (rng.Float64() - 0.5) * 255 * intensity
			c := out.NRGBAAt(x, y)
			c.R = clampChannel(float64(c.R) + noise)
			c.G = clampChannel(float64(c.G) + noise)
			c.B = clampChannel(float64(c.B) + noise)
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
