package congestion

import (
	"fmt"
	"math"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Kind tells a primary feature-congestion result from an edge-density fallback.
type Kind string

const (
	KindPrimary  Kind = "primary"
	KindFallback Kind = "fallback"
)

// Estimate is a clutter estimate tagged with how it was produced. A fallback
// carries only ComplexityScore, Grade and Interpretation; Cause records why
// the primary model failed.
type Estimate struct {
	Kind Kind `json:"kind"`
	Result
	Cause string `json:"cause,omitempty"`
}

// IsFallback reports whether the estimate came from the edge-density fallback.
func (e Estimate) IsFallback() bool { return e.Kind == KindFallback }

// EstimateClutter runs Compute and falls back to edge density when it fails.
// The returned error is non-nil only if both paths fail.
func (a *Analyzer) EstimateClutter(img *raster.Image) (Estimate, error) {
	res, err := a.Compute(img)
	if err == nil {
		return Estimate{Kind: KindPrimary, Result: res}, nil
	}

	fb, ferr := a.Fallback(img)
	if ferr != nil {
		return Estimate{}, fmt.Errorf("feature congestion failed: %w (fallback: %v)", err, ferr)
	}
	fb.Cause = err.Error()
	return fb, nil
}

// Fallback estimates clutter from Canny edge density on the grey image.
func (a *Analyzer) Fallback(img *raster.Image) (Estimate, error) {
	if img == nil || img.W == 0 || img.H == 0 {
		return Estimate{}, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}
	cfg := a.config
	edges := field.Canny([]*field.Field{img.Gray()}, cfg.FallbackLow, cfg.FallbackHigh)
	score := math.Min(100, field.Density(edges)*cfg.FallbackScale)

	grade := GradeB
	if score > cfg.FallbackBusy {
		grade = GradeC
	}
	return Estimate{
		Kind: KindFallback,
		Result: Result{
			ComplexityScore: score,
			Grade:           grade,
			Interpretation:  FallbackInterpretation,
		},
	}, nil
}
