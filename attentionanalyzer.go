// Package attentionanalyzer estimates where users look on a UI screenshot
// and how hard the layout is to read.
//
// A base saliency field, from an external model or the built-in heuristic
// predictor, is refined with face, text and reading-order boosts. UX metrics
// are then derived from the refined field, and the Rosenholtz feature
// congestion model scores visual clutter independently.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		attentionanalyzer "github.com/menta2k/attention-analyzer"
//		"github.com/menta2k/attention-analyzer/pkg/processing"
//	)
//
//	func main() {
//		img, err := processing.NewProcessor().LoadRaster(context.Background(), "landing.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		report, err := attentionanalyzer.New().Analyze(context.Background(), img, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("clutter %.1f (%s), %d hotspots\n",
//			report.Clutter.ComplexityScore, report.Clutter.Grade, report.Metrics.HotspotCount)
//	}
//
// The package consists of these components:
//
//  1. Congestion (pkg/congestion): feature congestion clutter model
//  2. Saliency (pkg/saliency): base-field intake and heuristic fusion
//  3. Metrics (pkg/metrics): focus, hotspots, gaze path and layout scores
//  4. Contrast and palette (pkg/contrast, pkg/palette): WCAG checks and dominant colours
//  5. Vision (pkg/vision, pkg/detection): built-in predictor and model-assisted face locator
package attentionanalyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/attention-analyzer/pkg/congestion"
	"github.com/menta2k/attention-analyzer/pkg/contrast"
	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/metrics"
	"github.com/menta2k/attention-analyzer/pkg/palette"
	"github.com/menta2k/attention-analyzer/pkg/raster"
	"github.com/menta2k/attention-analyzer/pkg/saliency"
	"github.com/menta2k/attention-analyzer/pkg/vision"
)

// Version of the attention analyzer library
const Version = "1.0.0"

// Config gathers the per-component configuration
type Config struct {
	Congestion congestion.Config
	Fusion     saliency.Config
	Metrics    metrics.Config
	Palette    palette.Config
	Thresholds contrast.Thresholds
	Predictor  vision.PredictorConfig
}

// DefaultConfig returns the default configuration of every component
func DefaultConfig() Config {
	return Config{
		Congestion: congestion.DefaultConfig(),
		Fusion:     saliency.DefaultConfig(),
		Metrics:    metrics.DefaultConfig(),
		Palette:    palette.DefaultConfig(),
		Thresholds: contrast.DefaultThresholds(),
		Predictor:  vision.DefaultPredictorConfig(),
	}
}

// Analyzer runs the full attention analysis for one image at a time. It is
// safe for concurrent use once constructed.
type Analyzer struct {
	config     Config
	predictor  saliency.Predictor
	fuser      *saliency.Fuser
	metrics    *metrics.Extractor
	congestion *congestion.Analyzer
	palette    *palette.Extractor
	enhance    bool
	logger     hclog.Logger
}

// Option customises an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger for the analyzer and its fuser
func WithLogger(l hclog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPredictor replaces the built-in heuristic base predictor
func WithPredictor(p saliency.Predictor) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.predictor = p
		}
	}
}

// WithFaceDetector enables the face boost
func WithFaceDetector(d saliency.FaceDetector) Option {
	return func(a *Analyzer) {
		a.fuser.SetFaceDetector(d)
	}
}

// WithEnhancement toggles the heuristic boosts; they are on by default
func WithEnhancement(on bool) Option {
	return func(a *Analyzer) {
		a.enhance = on
	}
}

// New creates a new Analyzer with default configuration
func New(opts ...Option) *Analyzer {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewWithConfig creates a new Analyzer with custom configuration
func NewWithConfig(config Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		config:     config,
		predictor:  vision.NewWithConfig(config.Predictor),
		fuser:      saliency.NewWithConfig(config.Fusion),
		metrics:    metrics.NewWithConfig(config.Metrics),
		congestion: congestion.NewWithConfig(config.Congestion),
		palette:    palette.NewWithConfig(config.Palette),
		enhance:    true,
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.fuser.SetLogger(a.logger.Named("fuser"))
	return a
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

// ColorReport holds the dominant colours and accessibility findings
type ColorReport struct {
	Dominant       []palette.Swatch        `json:"dominant_colors"`
	ContrastIssues []palette.Issue         `json:"contrast_issues"`
	CTA            contrast.Recommendation `json:"cta_recommendation"`
}

// Report is the complete analysis of one image
type Report struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Source    string              `json:"source,omitempty"`
	Info      ImageInfo           `json:"info"`
	Enhanced  bool                `json:"enhanced"`
	Metrics   metrics.Metrics     `json:"metrics"`
	Clutter   congestion.Estimate `json:"feature_congestion"`
	Colors    ColorReport         `json:"colors"`

	// Saliency is the final unit-normalised field.
	Saliency *field.Field `json:"-"`
}

// Analyze runs the analysis. A nil base field is replaced by the configured
// predictor's output. Clutter estimation, the fusion and metrics chain and
// palette extraction run concurrently over the read-only raster.
func (a *Analyzer) Analyze(ctx context.Context, img *raster.Image, base *field.Field) (*Report, error) {
	if img == nil {
		return nil, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}

	if base == nil {
		var err error
		base, err = a.predictor.Predict(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("base saliency prediction failed: %w", err)
		}
	}

	report := &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Info:      imageInfo(img),
		Enhanced:  a.enhance,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		est, err := a.congestion.EstimateClutter(img)
		if err != nil {
			return fmt.Errorf("clutter estimation failed: %w", err)
		}
		if est.IsFallback() {
			a.logger.Warn("feature congestion unavailable, using edge density", "cause", est.Cause)
		}
		report.Clutter = est
		return nil
	})

	g.Go(func() error {
		fused, err := a.fuser.Fuse(gctx, base, img, a.enhance)
		if err != nil {
			return fmt.Errorf("saliency fusion failed: %w", err)
		}
		m, err := a.metrics.Extract(fused, img)
		if err != nil {
			return fmt.Errorf("metric extraction failed: %w", err)
		}
		report.Saliency = fused
		report.Metrics = m
		return nil
	})

	g.Go(func() error {
		swatches, err := a.palette.Extract(img)
		if err != nil {
			return fmt.Errorf("palette extraction failed: %w", err)
		}
		report.Colors = ColorReport{
			Dominant:       swatches,
			ContrastIssues: palette.ContrastIssues(swatches, a.config.Palette.IssuePairs, a.config.Thresholds),
			CTA:            a.config.Thresholds.RecommendCTA(palette.Background(swatches)),
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("analysis complete", "id", report.ID,
		"hotspots", report.Metrics.HotspotCount, "clutter", report.Clutter.ComplexityScore)
	return report, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

func imageInfo(img *raster.Image) ImageInfo {
	return ImageInfo{
		Width:       img.W,
		Height:      img.H,
		AspectRatio: float64(img.W) / float64(img.H),
		Area:        img.W * img.H,
	}
}
