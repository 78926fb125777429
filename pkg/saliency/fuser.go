package saliency

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Fuser combines a base saliency field with the heuristic boosts.
type Fuser struct {
	config Config
	faces  FaceDetector
	logger hclog.Logger
}

// New creates a Fuser with default configuration and no face detector.
func New() *Fuser {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Fuser with custom configuration.
func NewWithConfig(config Config) *Fuser {
	return &Fuser{config: config, logger: hclog.NewNullLogger()}
}

// SetFaceDetector enables the face boost. A nil detector disables it.
func (fu *Fuser) SetFaceDetector(d FaceDetector) {
	fu.faces = d
}

// SetLogger sets the logger used for pipeline diagnostics.
func (fu *Fuser) SetLogger(l hclog.Logger) {
	if l == nil {
		l = hclog.NewNullLogger()
	}
	fu.logger = l
}

// Transforms returns the enhancement pipeline in application order:
// face, text, then reading bias.
func (fu *Fuser) Transforms() []Transform {
	var ts []Transform
	if fu.faces != nil {
		ts = append(ts, FaceBoost{Detector: fu.faces, Weight: fu.config.FaceWeight, Logger: fu.logger})
	}
	ts = append(ts,
		TextBoost{Weight: fu.config.TextWeight, Threshold: fu.config.TextThreshold, Sigma: fu.config.TextSigma},
		ReadingBias{Config: fu.config},
	)
	return ts
}

// Fuse returns the final unit-normalised saliency field. base must match the
// image's shape. With enhance false the base is only renormalised.
func (fu *Fuser) Fuse(ctx context.Context, base *field.Field, img *raster.Image, enhance bool) (*field.Field, error) {
	var ts []Transform
	if enhance {
		ts = fu.Transforms()
	}
	return fu.FuseWith(ctx, base, img, ts)
}

// FuseWith applies an explicit list of transforms. Additive transforms run
// before multiplicative ones; order within a stage is preserved.
func (fu *Fuser) FuseWith(ctx context.Context, base *field.Field, img *raster.Image, ts []Transform) (*field.Field, error) {
	if img == nil {
		return nil, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}
	if err := img.CheckShape(base); err != nil {
		return nil, err
	}
	if !base.Finite() {
		return nil, ErrNonFinite
	}

	ordered := make([]Transform, len(ts))
	copy(ordered, ts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Stage() < ordered[j].Stage() })

	cur := base
	for _, t := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := t.Apply(ctx, cur, img)
		if err != nil {
			return nil, fmt.Errorf("%s boost failed: %w", t.Name(), err)
		}
		fu.logger.Debug("applied saliency transform", "transform", t.Name())
		cur = next
	}

	out := field.UnitNormalize(cur)
	if !out.Finite() {
		return nil, ErrNonFinite
	}
	return out, nil
}
