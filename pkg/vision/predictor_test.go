package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	// dark button in the lower right quadrant
	for y := height * 3 / 5; y < height*4/5; y++ {
		for x := width * 3 / 5; x < width*4/5; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 40, B: 160, A: 255})
		}
	}
	return img
}

func TestPredict(t *testing.T) {
	img, err := raster.FromImage(createTestImage(100, 80))
	require.NoError(t, err)

	f, err := New().Predict(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 100, f.W)
	assert.Equal(t, 80, f.H)
	assert.Equal(t, field.NormUnit, f.Norm)
	assert.InDelta(t, 1, f.Max(), 1e-6)
	assert.GreaterOrEqual(t, f.Min(), 0.0)

	// The button outranks empty background.
	assert.Greater(t, f.At(70, 56), f.At(10, 10))
}

func TestPredictFlat(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	img, err := raster.FromImage(src)
	require.NoError(t, err)

	f, err := NewWithConfig(PredictorConfig{EdgeWeight: 1, ContrastWeight: 1}).Predict(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Max())
}

func TestPredictErrors(t *testing.T) {
	_, err := New().Predict(context.Background(), nil)
	assert.ErrorIs(t, err, raster.ErrEmptyImage)

	img, err := raster.FromImage(createTestImage(10, 10))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Predict(ctx, img)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEdgeStrength(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			src.Set(x, y, color.White)
		}
	}
	img, err := raster.FromImage(src)
	require.NoError(t, err)

	e := New().edgeStrength(img)
	assert.Equal(t, 0.0, e.At(1, 5))
	assert.Greater(t, e.At(4, 5), 0.0)
	assert.Greater(t, e.At(5, 5), 0.0)
	assert.LessOrEqual(t, e.Max(), 1.0)
}

func BenchmarkPredict(b *testing.B) {
	img, err := raster.FromImage(createTestImage(320, 240))
	if err != nil {
		b.Fatal(err)
	}
	p := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Predict(context.Background(), img); err != nil {
			b.Fatal(err)
		}
	}
}
