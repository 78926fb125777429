// Package congestion estimates visual clutter with a feature-congestion model:
// local variance of luminance contrast, chrominance and edge orientation,
// each normalised independently and fused with near-equal weights.
package congestion

import (
	"errors"
	"fmt"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Normalization selects how each variance map is brought onto [0,100].
type Normalization string

const (
	Percentile Normalization = "percentile"
	ZScore     Normalization = "zscore"
)

// Config holds every policy constant of the model.
type Config struct {
	WindowSize        int           `json:"window_size"`
	NoiseFloor        float64       `json:"noise_floor"`
	ContrastWeight    float64       `json:"contrast_weight"`
	OrientationWeight float64       `json:"orientation_weight"`
	ColorWeight       float64       `json:"color_weight"`
	LowPercentile     float64       `json:"low_percentile"`
	HighPercentile    float64       `json:"high_percentile"`
	Normalization     Normalization `json:"normalization"`

	// Upper bounds (inclusive) of grades A, B and C.
	GradeA float64 `json:"grade_a"`
	GradeB float64 `json:"grade_b"`
	GradeC float64 `json:"grade_c"`

	// Edge-density fallback.
	FallbackLow   float64 `json:"fallback_canny_low"`
	FallbackHigh  float64 `json:"fallback_canny_high"`
	FallbackScale float64 `json:"fallback_scale"`
	FallbackBusy  float64 `json:"fallback_busy"`
}

// DefaultConfig returns the standard model parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize:        16,
		NoiseFloor:        field.DefaultNoiseFloor,
		ContrastWeight:    0.34,
		OrientationWeight: 0.33,
		ColorWeight:       0.33,
		LowPercentile:     5,
		HighPercentile:    95,
		Normalization:     Percentile,
		GradeA:            35,
		GradeB:            55,
		GradeC:            75,
		FallbackLow:       100,
		FallbackHigh:      200,
		FallbackScale:     500,
		FallbackBusy:      50,
	}
}

// Grade is a letter grade from A (minimal) to D (excessive).
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

var interpretations = map[Grade]string{
	GradeA: "Minimalist - Very low visual clutter",
	GradeB: "Balanced - Moderate visual complexity",
	GradeC: "High - Visually busy",
	GradeD: "Excessive - Cognitive overload likely",
}

// FallbackInterpretation labels estimates that did not come from the
// feature-congestion model.
const FallbackInterpretation = "Fallback: Edge Density Estimate"

// Result is the outcome of one feature-congestion computation. Scores are
// on [0,100].
type Result struct {
	ComplexityScore     float64 `json:"complexity_score"`
	ContrastVariance    float64 `json:"contrast_variance"`
	OrientationVariance float64 `json:"orientation_variance"`
	ColorVariance       float64 `json:"color_variance"`
	Grade               Grade   `json:"grade"`
	Interpretation      string  `json:"interpretation"`

	// Map is the fused per-pixel congestion on [0,100].
	Map *field.Field `json:"-"`
}

// Analyzer computes feature congestion.
type Analyzer struct {
	config Config
}

// New creates an Analyzer with default configuration.
func New() *Analyzer {
	return &Analyzer{config: DefaultConfig()}
}

// NewWithConfig creates an Analyzer with custom configuration.
func NewWithConfig(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.config }

// GradeFor maps a complexity score to its grade.
func (c Config) GradeFor(score float64) Grade {
	switch {
	case score <= c.GradeA:
		return GradeA
	case score <= c.GradeB:
		return GradeB
	case score <= c.GradeC:
		return GradeC
	default:
		return GradeD
	}
}

// Interpretation returns the description of a grade.
func (g Grade) Interpretation() string {
	return interpretations[g]
}

// Compute runs the model over img.
func (a *Analyzer) Compute(img *raster.Image) (Result, error) {
	if img == nil || img.W == 0 || img.H == 0 {
		return Result{}, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}
	cfg := a.config
	if cfg.WindowSize < 1 {
		return Result{}, fmt.Errorf("invalid window size %d", cfg.WindowSize)
	}

	l, ca, cb := img.Lab()

	varA, err := field.LocalVariance(ca, cfg.WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("color variance failed: %w", err)
	}
	varB, err := field.LocalVariance(cb, cfg.WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("color variance failed: %w", err)
	}
	colorVar, err := varA.Add(varB, 1)
	if err != nil {
		return Result{}, err
	}
	for i := range colorVar.Data {
		colorVar.Data[i] /= 2
	}

	contrastVar, err := field.LocalVariance(l, cfg.WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("contrast variance failed: %w", err)
	}

	orientation := field.OrientationMap(l, cfg.NoiseFloor)
	orientVar, err := field.LocalVariance(orientation, cfg.WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("orientation variance failed: %w", err)
	}

	normColor := a.normalize(colorVar)
	normContrast := a.normalize(contrastVar)
	normOrient := a.normalize(orientVar)

	fused := field.New(img.W, img.H)
	fused.Norm = field.NormPercentile
	for i := range fused.Data {
		fused.Data[i] = cfg.ContrastWeight*normContrast.Data[i] +
			cfg.OrientationWeight*normOrient.Data[i] +
			cfg.ColorWeight*normColor.Data[i]
	}
	if !fused.Finite() {
		return Result{}, errors.New("feature congestion produced non-finite values")
	}

	score := fused.Mean()
	grade := cfg.GradeFor(score)
	return Result{
		ComplexityScore:     score,
		ContrastVariance:    normContrast.Mean(),
		OrientationVariance: normOrient.Mean(),
		ColorVariance:       normColor.Mean(),
		Grade:               grade,
		Interpretation:      grade.Interpretation(),
		Map:                 fused,
	}, nil
}

func (a *Analyzer) normalize(f *field.Field) *field.Field {
	if a.config.Normalization == ZScore {
		return field.ZScoreNormalize(f)
	}
	return field.PercentileNormalize(f, a.config.LowPercentile, a.config.HighPercentile)
}
