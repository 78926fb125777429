package saliency

import (
	"context"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Stage orders transforms: every additive boost runs before any
// multiplicative one.
type Stage int

const (
	Additive Stage = iota
	Multiplicative
)

// Transform is one heuristic step of the fusion pipeline. Apply must not
// modify its inputs.
type Transform interface {
	Name() string
	Stage() Stage
	Apply(ctx context.Context, f *field.Field, img *raster.Image) (*field.Field, error)
}

// FaceDetector locates faces and returns their pixel bounding boxes.
type FaceDetector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error)
}

// FaceBoost adds blurred filled ellipses over detected faces.
type FaceBoost struct {
	Detector FaceDetector
	Weight   float64
	Logger   hclog.Logger
}

func (FaceBoost) Name() string { return "face" }
func (FaceBoost) Stage() Stage { return Additive }

// Apply returns f unchanged when no face is found.
func (b FaceBoost) Apply(ctx context.Context, f *field.Field, img *raster.Image) (*field.Field, error) {
	faces, err := b.Detector.DetectFaces(ctx, img.ToImage())
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	logger := b.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	m, n := FaceMap(faces, img.W, img.H)
	if n == 0 {
		logger.Debug("no faces detected, skipping face boost")
		return f, nil
	}
	logger.Debug("boosting face regions", "faces", n)
	return f.Add(m, b.Weight)
}

// FaceMap rasterises each face as a filled ellipse inscribed in its box,
// blurs with sigma of a quarter of the mean face width and scales the peak to
// one. It also returns how many faces overlapped the frame.
func FaceMap(faces []image.Rectangle, w, h int) (*field.Field, int) {
	m := field.New(w, h)
	frame := image.Rect(0, 0, w, h)
	n, widths := 0, 0
	for _, r := range faces {
		r = r.Canon()
		if r.Intersect(frame).Empty() {
			continue
		}
		n++
		widths += r.Dx()

		cx := float64(r.Min.X + r.Dx()/2)
		cy := float64(r.Min.Y + r.Dy()/2)
		ax := max(float64(r.Dx()/2), 0.5)
		ay := max(float64(r.Dy()/2), 0.5)
		clip := r.Inset(-1).Intersect(frame)
		for y := clip.Min.Y; y < clip.Max.Y; y++ {
			for x := clip.Min.X; x < clip.Max.X; x++ {
				dx := (float64(x) - cx) / ax
				dy := (float64(y) - cy) / ay
				if dx*dx+dy*dy <= 1 {
					m.Set(x, y, 1)
				}
			}
		}
	}
	if n == 0 {
		return m, 0
	}
	sigma := float64((widths / n) / 4)
	return field.MaxNormalize(field.GaussianBlur(m, sigma)), n
}

// TextBoost adds blurred high-gradient regions of the luminance channel.
type TextBoost struct {
	Weight    float64
	Threshold float64
	Sigma     float64
}

func (TextBoost) Name() string { return "text" }
func (TextBoost) Stage() Stage { return Additive }

func (b TextBoost) Apply(_ context.Context, f *field.Field, img *raster.Image) (*field.Field, error) {
	return f.Add(TextMap(img, b.Threshold, b.Sigma), b.Weight)
}

// TextMap unit-normalises the Sobel magnitude of the grey image, zeroes
// values at or below threshold and blurs the rest.
func TextMap(img *raster.Image, threshold, sigma float64) *field.Field {
	t := field.UnitNormalize(field.GradientMagnitude(img.Gray()))
	for i, v := range t.Data {
		if v <= threshold {
			t.Data[i] = 0
		}
	}
	return field.GaussianBlur(t, sigma)
}

// ReadingBias modulates the field towards the top-left of the frame.
type ReadingBias struct {
	Config Config
}

func (ReadingBias) Name() string { return "reading-bias" }
func (ReadingBias) Stage() Stage { return Multiplicative }

func (b ReadingBias) Apply(_ context.Context, f *field.Field, img *raster.Image) (*field.Field, error) {
	bias := BiasMap(img.W, img.H, b.Config)
	out := field.New(f.W, f.H)
	for i, v := range f.Data {
		out.Data[i] = v * (b.Config.BiasFloor + b.Config.BiasWeight*bias.Data[i])
	}
	return out, nil
}

// BiasMap is the blurred reading-direction prior for a w×h frame. It depends
// on the dimensions only. The prior is separable, so each axis profile is
// blurred on its own.
func BiasMap(w, h int, cfg Config) *field.Field {
	xs := make([]float64, w)
	for x := range xs {
		xs[x] = 1 - float64(x)/float64(w)*cfg.HorizontalDecay
	}
	ys := make([]float64, h)
	for y := range ys {
		ys[y] = 1 - float64(y)/float64(h)*cfg.VerticalDecay
	}

	var sigma float64
	if cfg.BiasSigmaDivisor > 0 {
		sigma = float64(min(w, h) / cfg.BiasSigmaDivisor)
	}
	xs = field.BlurLine(xs, sigma)
	ys = field.BlurLine(ys, sigma)

	m := field.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Data[y*w+x] = xs[x] * ys[y]
		}
	}
	return m
}

// FaceDetectorFunc adapts a function to FaceDetector.
type FaceDetectorFunc func(ctx context.Context, img image.Image) ([]image.Rectangle, error)

func (f FaceDetectorFunc) DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	return f(ctx, img)
}
