// Package vision provides a built-in base saliency predictor for use when no
// learned saliency map is available. It scores local colour edges and
// brightness contrast, then smooths the result; it is a stand-in, not a
// model of human fixations.
package vision

import (
	"context"
	"math"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// PredictorConfig holds configuration for the heuristic predictor
type PredictorConfig struct {
	EdgeWeight     float64 `json:"edge_weight"`
	ContrastWeight float64 `json:"contrast_weight"`
	// BlurDivisor sets the smoothing sigma to min(w,h)/BlurDivisor; zero
	// disables smoothing.
	BlurDivisor float64 `json:"blur_divisor"`
}

// DefaultPredictorConfig returns the default weights
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		EdgeWeight:     0.6,
		ContrastWeight: 0.4,
		BlurDivisor:    40,
	}
}

// HeuristicPredictor computes an edge and contrast saliency field
type HeuristicPredictor struct {
	config PredictorConfig
}

// New creates a HeuristicPredictor with default configuration
func New() *HeuristicPredictor {
	return &HeuristicPredictor{config: DefaultPredictorConfig()}
}

// NewWithConfig creates a HeuristicPredictor with custom configuration
func NewWithConfig(config PredictorConfig) *HeuristicPredictor {
	return &HeuristicPredictor{config: config}
}

var neighbors = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

// Predict returns a unit-normalised saliency field with the image's shape.
func (p *HeuristicPredictor) Predict(ctx context.Context, img *raster.Image) (*field.Field, error) {
	if img == nil || img.W == 0 || img.H == 0 {
		return nil, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := p.edgeStrength(img)
	gray := img.Gray()
	mean := gray.Mean()

	out := field.New(img.W, img.H)
	for i := range out.Data {
		contrast := math.Abs(gray.Data[i]-mean) / 255
		out.Data[i] = p.config.EdgeWeight*edges.Data[i] + p.config.ContrastWeight*contrast
	}

	if p.config.BlurDivisor > 0 {
		sigma := float64(min(img.W, img.H)) / p.config.BlurDivisor
		if sigma >= 0.5 {
			out = field.GaussianBlur(out, sigma)
		}
	}
	return field.UnitNormalize(out), nil
}

// edgeStrength is the mean RGB distance to the 8 neighbours, edge pixels
// replicated, scaled to [0,1].
func (p *HeuristicPredictor) edgeStrength(img *raster.Image) *field.Field {
	w, h := img.W, img.H
	out := field.New(w, h)
	norm := 8 * 255 * math.Sqrt(3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r1, g1, b1 := img.RGBAt(x, y)
			var sum float64
			for _, o := range neighbors {
				nx := min(max(x+o[0], 0), w-1)
				ny := min(max(y+o[1], 0), h-1)
				r2, g2, b2 := img.RGBAt(nx, ny)
				dr := float64(r1) - float64(r2)
				dg := float64(g1) - float64(g2)
				db := float64(b1) - float64(b2)
				sum += math.Sqrt(dr*dr + dg*dg + db*db)
			}
			out.Data[y*w+x] = sum / norm
		}
	}
	return out
}
