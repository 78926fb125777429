package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/attention-analyzer/pkg/contrast"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// stripes paints vertical bands of the given colours with the given widths.
func stripes(h int, bands []color.RGBA, widths []int) *raster.Image {
	w := 0
	for _, bw := range widths {
		w += bw
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	x0 := 0
	for i, c := range bands {
		for x := x0; x < x0+widths[i]; x++ {
			for y := 0; y < h; y++ {
				img.Set(x, y, c)
			}
		}
		x0 += widths[i]
	}
	r, err := raster.FromImage(img)
	if err != nil {
		panic(err)
	}
	return r
}

func TestExtractFewColours(t *testing.T) {
	img := stripes(10, []color.RGBA{{255, 255, 255, 255}, {0, 0, 0, 255}}, []int{30, 10})
	sw, err := New().Extract(img)
	require.NoError(t, err)
	require.Len(t, sw, 2)
	assert.Equal(t, "#FFFFFF", sw[0].Color.Hex())
	assert.InDelta(t, 75, sw[0].Percentage, 1e-9)
	assert.InDelta(t, 25, sw[1].Percentage, 1e-9)
}

func TestExtractClusters(t *testing.T) {
	// Eight colours in three tight groups.
	bands := []color.RGBA{
		{250, 250, 250, 255}, {245, 245, 245, 255}, {240, 240, 240, 255},
		{200, 10, 10, 255}, {190, 20, 20, 255},
		{10, 10, 200, 255}, {20, 20, 190, 255}, {15, 15, 195, 255},
	}
	widths := []int{25, 20, 20, 10, 10, 5, 5, 5}
	img := stripes(20, bands, widths)

	cfg := DefaultConfig()
	cfg.Colors = 3
	sw, err := NewWithConfig(cfg).Extract(img)
	require.NoError(t, err)
	require.Len(t, sw, 3)

	assert.InDelta(t, 65, sw[0].Percentage, 1e-6)
	assert.InDelta(t, 20, sw[1].Percentage, 1e-6)
	assert.InDelta(t, 15, sw[2].Percentage, 1e-6)
	assert.Greater(t, sw[0].Color.R, uint8(230))
	assert.Greater(t, sw[1].Color.R, uint8(180))

	again, err := NewWithConfig(cfg).Extract(img)
	require.NoError(t, err)
	assert.Equal(t, sw, again)
}

func TestExtractErrors(t *testing.T) {
	_, err := New().Extract(nil)
	assert.ErrorIs(t, err, raster.ErrEmptyImage)

	cfg := DefaultConfig()
	cfg.Colors = 0
	_, err = NewWithConfig(cfg).Extract(stripes(2, []color.RGBA{{1, 2, 3, 255}}, []int{2}))
	assert.Error(t, err)
}

func TestExtractWithoutIterations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	// Six colours so the clustering path runs.
	img := stripes(10, []color.RGBA{
		{255, 255, 255, 255}, {0, 0, 0, 255}, {255, 0, 0, 255},
		{0, 255, 0, 255}, {0, 0, 255, 255}, {128, 128, 128, 255},
	}, []int{20, 4, 4, 4, 4, 4})

	var sw []Swatch
	require.NotPanics(t, func() {
		var err error
		sw, err = NewWithConfig(cfg).Extract(img)
		require.NoError(t, err)
	})
	require.NotEmpty(t, sw)
	assert.LessOrEqual(t, len(sw), cfg.Colors)

	var total float64
	for _, s := range sw {
		total += s.Percentage
	}
	assert.InDelta(t, 100, total, 1e-9)
}

func TestContrastIssues(t *testing.T) {
	sw := []Swatch{
		{Color: contrast.MustParseHex("#FFFFFF"), Percentage: 60},
		{Color: contrast.MustParseHex("#EEEEEE"), Percentage: 20},
		{Color: contrast.MustParseHex("#000000"), Percentage: 15},
		{Color: contrast.MustParseHex("#F0F0F0"), Percentage: 5},
	}
	issues := ContrastIssues(sw, 3, contrast.DefaultThresholds())
	require.Len(t, issues, 1)
	assert.Equal(t, "#FFFFFF", issues[0].Color1.Hex())
	assert.Equal(t, "#EEEEEE", issues[0].Color2.Hex())
	assert.Contains(t, issues[0].Issue, "Low contrast")

	assert.Empty(t, ContrastIssues(sw[:1], 3, contrast.DefaultThresholds()))
	assert.Equal(t, "#FFFFFF", Background(sw).Hex())
	assert.Equal(t, "#FFFFFF", Background(nil).Hex())
}
