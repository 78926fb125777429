// Package render draws saliency heatmaps and debug overlays.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/metrics"
)

// Config controls overlay appearance
type Config struct {
	// Alpha is the heatmap opacity over the original image.
	Alpha float64 `json:"alpha"`
	// StrokeRatio sets the debug box stroke as a fraction of the shorter side.
	StrokeRatio float64 `json:"stroke_ratio"`
}

// DefaultConfig returns the standard overlay settings
func DefaultConfig() Config {
	return Config{Alpha: 0.4, StrokeRatio: 0.004}
}

// Renderer produces visualisations of analysis results
type Renderer struct {
	config Config
}

// New creates a Renderer with default configuration
func New() *Renderer {
	return &Renderer{config: DefaultConfig()}
}

// NewWithConfig creates a Renderer with custom configuration
func NewWithConfig(config Config) *Renderer {
	return &Renderer{config: config}
}

// Jet maps v in [0,1] to the JET false-colour scale, blue through red.
func Jet(v float64) color.NRGBA {
	v = clamp(v, 0, 1)
	ch := func(c float64) uint8 {
		return uint8(math.Round(clamp(1.5-math.Abs(4*v-c), 0, 1) * 255))
	}
	return color.NRGBA{R: ch(3), G: ch(2), B: ch(1), A: 255}
}

// Colorize renders a unit field with the JET colour map.
func Colorize(f *field.Field) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			out.SetNRGBA(x, y, Jet(f.At(x, y)))
		}
	}
	return out
}

// Heatmap blends the colourised saliency field over img. A field of a
// different size is resampled to the image bounds.
func (r *Renderer) Heatmap(img image.Image, sal *field.Field) *image.NRGBA {
	b := img.Bounds()
	var heat image.Image = Colorize(sal)
	if sal.W != b.Dx() || sal.H != b.Dy() {
		heat = imaging.Resize(heat, b.Dx(), b.Dy(), imaging.Linear)
	}
	return imaging.Overlay(imaging.Clone(img), heat, image.Pt(0, 0), r.config.Alpha)
}

// DebugOverlay draws hotspot boxes with their centroids and CTA candidate
// boxes on a copy of img.
func (r *Renderer) DebugOverlay(img image.Image, m metrics.Metrics) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{0, 255, 0, 255}  // hotspot
	gold := color.NRGBA{255, 204, 0, 255} // CTA candidate
	red := color.NRGBA{255, 0, 0, 255}    // centroid
	blue := color.NRGBA{0, 170, 255, 255} // image center
	stroke := int(math.Max(2, r.config.StrokeRatio*float64(min(w, h))))
	cross := int(math.Max(4, 0.01*float64(min(w, h))))

	for _, hs := range m.Hotspots {
		drawBox(nrgba, hs.Bounds, green, stroke)
		px, py := int(math.Round(hs.CX)), int(math.Round(hs.CY))
		drawHLine(nrgba, py, px-cross, px+cross, red)
		drawVLine(nrgba, px, py-cross, py+cross, red)
	}
	for _, c := range m.CTA.Details {
		drawBox(nrgba, c.Bounds, gold, stroke)
	}

	ix, iy := w/2, h/2
	drawHLine(nrgba, iy, ix-6, ix+6, blue)
	drawVLine(nrgba, ix, iy-6, iy+6, blue)

	return nrgba
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	b := img.Bounds()
	if y < 0 || y >= b.Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0, x1 = max(x0, 0), min(x1, b.Dx())
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	b := img.Bounds()
	if x < 0 || x >= b.Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0, y1 = max(y0, 0), min(y1, b.Dy())
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
