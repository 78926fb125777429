// Package saliency turns a base attention estimate into the final saliency
// field by composing heuristic boosts for faces, text and reading direction.
package saliency

import (
	"context"
	"errors"
	"math"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Config holds the fusion weights and shapes of the heuristic boosts.
type Config struct {
	FaceWeight float64 `json:"face_weight"`

	TextWeight    float64 `json:"text_weight"`
	TextThreshold float64 `json:"text_threshold"`
	TextSigma     float64 `json:"text_sigma"`

	// Reading bias: bias(x,y) = (1 - x/W·HorizontalDecay)(1 - y/H·VerticalDecay),
	// blurred with sigma min(W,H)/BiasSigmaDivisor and blended as
	// field·(BiasFloor + BiasWeight·bias).
	VerticalDecay    float64 `json:"vertical_decay"`
	HorizontalDecay  float64 `json:"horizontal_decay"`
	BiasFloor        float64 `json:"bias_floor"`
	BiasWeight       float64 `json:"bias_weight"`
	BiasSigmaDivisor int     `json:"bias_sigma_divisor"`
}

// DefaultConfig returns the standard boost weights.
func DefaultConfig() Config {
	return Config{
		FaceWeight:       0.30,
		TextWeight:       0.15,
		TextThreshold:    0.3,
		TextSigma:        5,
		VerticalDecay:    0.6,
		HorizontalDecay:  0.5,
		BiasFloor:        0.7,
		BiasWeight:       0.3,
		BiasSigmaDivisor: 10,
	}
}

// Predictor produces a unit-normalised base saliency field for an image.
type Predictor interface {
	Predict(ctx context.Context, img *raster.Image) (*field.Field, error)
}

// ErrNonFinite is returned when a field carries NaN or infinite values.
var ErrNonFinite = errors.New("saliency: non-finite values in field")

// FromLogDensity converts a predictor's raw log-density into a unit field:
// exponentiate, then min-max normalise.
func FromLogDensity(logDensity *field.Field) (*field.Field, error) {
	if logDensity.Empty() {
		return nil, field.ErrEmptyField
	}
	d := logDensity.Map(math.Exp)
	if !d.Finite() {
		return nil, ErrNonFinite
	}
	return field.UnitNormalize(d), nil
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, img *raster.Image) (*field.Field, error)

func (f PredictorFunc) Predict(ctx context.Context, img *raster.Image) (*field.Field, error) {
	return f(ctx, img)
}
