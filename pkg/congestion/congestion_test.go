package congestion

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/attention-analyzer/pkg/raster"
)

func createTestImage(width, height int, fill func(x, y int) color.Color) *raster.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	r, err := raster.FromImage(img)
	if err != nil {
		panic(err)
	}
	return r
}

func uniform(c color.Color) func(int, int) color.Color {
	return func(int, int) color.Color { return c }
}

// busy draws small coloured tiles at varying orientations of stripes.
func busy(x, y int) color.Color {
	tile := (x/8 + y/8) % 4
	switch tile {
	case 0:
		if (x+y)%3 == 0 {
			return color.RGBA{R: 230, G: 30, B: 30, A: 255}
		}
		return color.White
	case 1:
		if x%2 == 0 {
			return color.RGBA{G: 160, B: 40, A: 255}
		}
		return color.Black
	case 2:
		if y%3 == 0 {
			return color.RGBA{R: 20, G: 20, B: 220, A: 255}
		}
		return color.RGBA{R: 250, G: 220, B: 0, A: 255}
	default:
		return color.RGBA{R: uint8(x * 5), G: uint8(y * 3), B: 128, A: 255}
	}
}

func TestGradeFor(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		score float64
		want  Grade
	}{
		{0, GradeA},
		{35, GradeA},
		{35.0001, GradeB},
		{55, GradeB},
		{55.1, GradeC},
		{75, GradeC},
		{75.01, GradeD},
		{100, GradeD},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cfg.GradeFor(tc.score), "score %v", tc.score)
	}
	assert.Equal(t, "Balanced - Moderate visual complexity", GradeB.Interpretation())
}

func TestComputeUniform(t *testing.T) {
	for _, c := range []color.Color{color.White, color.Black, color.RGBA{R: 200, G: 40, B: 90, A: 255}} {
		res, err := New().Compute(createTestImage(64, 48, uniform(c)))
		require.NoError(t, err)
		assert.InDelta(t, 0, res.ColorVariance, 1e-6)
		assert.InDelta(t, 0, res.ContrastVariance, 1e-6)
		assert.InDelta(t, 0, res.ComplexityScore, 1e-6)
		assert.Equal(t, GradeA, res.Grade)
		assert.Equal(t, "Minimalist - Very low visual clutter", res.Interpretation)
	}
}

func TestComputeBounds(t *testing.T) {
	images := map[string]*raster.Image{
		"busy": createTestImage(96, 80, busy),
		"half": createTestImage(40, 40, func(x, _ int) color.Color {
			if x < 20 {
				return color.White
			}
			return color.Black
		}),
		"tiny": createTestImage(3, 2, busy),
	}
	for name, img := range images {
		t.Run(name, func(t *testing.T) {
			res, err := New().Compute(img)
			require.NoError(t, err)
			for _, v := range []float64{res.ComplexityScore, res.ContrastVariance, res.OrientationVariance, res.ColorVariance} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 100.0)
			}
			assert.Equal(t, DefaultConfig().GradeFor(res.ComplexityScore), res.Grade)
			assert.Equal(t, img.W, res.Map.W)
		})
	}
}

func TestComputeBusyScoresHigher(t *testing.T) {
	busyRes, err := New().Compute(createTestImage(96, 80, busy))
	require.NoError(t, err)
	flat, err := New().Compute(createTestImage(96, 80, uniform(color.White)))
	require.NoError(t, err)
	assert.Greater(t, busyRes.ComplexityScore, flat.ComplexityScore)
}

func TestComputeZScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Normalization = ZScore
	res, err := NewWithConfig(cfg).Compute(createTestImage(64, 64, busy))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ComplexityScore, 0.0)
	assert.LessOrEqual(t, res.ComplexityScore, 100.0)
}

func TestComputeDeterministic(t *testing.T) {
	img := createTestImage(50, 30, busy)
	a, err := New().Compute(img)
	require.NoError(t, err)
	b, err := New().Compute(img)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestComputeEmpty(t *testing.T) {
	_, err := New().Compute(nil)
	var le *raster.ImageLoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, raster.ErrEmptyImage)
}

func TestEstimateClutter(t *testing.T) {
	img := createTestImage(64, 64, busy)

	t.Run("primary", func(t *testing.T) {
		est, err := New().EstimateClutter(img)
		require.NoError(t, err)
		assert.Equal(t, KindPrimary, est.Kind)
		assert.False(t, est.IsFallback())
		assert.NotEqual(t, FallbackInterpretation, est.Interpretation)
	})

	t.Run("fallback when the model fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WindowSize = 0
		est, err := NewWithConfig(cfg).EstimateClutter(img)
		require.NoError(t, err)
		assert.True(t, est.IsFallback())
		assert.Equal(t, FallbackInterpretation, est.Interpretation)
		assert.Contains(t, est.Cause, "window size")
		assert.Contains(t, []Grade{GradeB, GradeC}, est.Grade)
		assert.LessOrEqual(t, est.ComplexityScore, 100.0)
	})

	t.Run("both fail", func(t *testing.T) {
		_, err := New().EstimateClutter(nil)
		assert.Error(t, err)
	})
}

func TestFallbackGrades(t *testing.T) {
	flat, err := New().Fallback(createTestImage(32, 32, uniform(color.Gray{Y: 90})))
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat.ComplexityScore)
	assert.Equal(t, GradeB, flat.Grade)

	// Three-pixel stripes put an edge in every third column.
	stripes := createTestImage(32, 32, func(x, _ int) color.Color {
		if (x/3)%2 == 0 {
			return color.White
		}
		return color.Black
	})
	busyFb, err := New().Fallback(stripes)
	require.NoError(t, err)
	assert.Equal(t, GradeC, busyFb.Grade)
	assert.Equal(t, 100.0, busyFb.ComplexityScore)
}

func BenchmarkCompute(b *testing.B) {
	img := createTestImage(400, 300, busy)
	a := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Compute(img)
	}
}
