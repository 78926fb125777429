package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/attention-analyzer/pkg/raster"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSaveAndLoad(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	src := createTestImage(20, 10, color.RGBA{R: 200, G: 40, B: 40, A: 255})

	for _, format := range []string{"png", "jpg", "webp"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "out."+format)
			require.NoError(t, p.SaveImage(src, path, format, 90, true))

			img, err := p.LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, 20, img.Bounds().Dx())
			assert.Equal(t, 10, img.Bounds().Dy())
		})
	}
}

func TestLoadImageErrors(t *testing.T) {
	p := NewProcessor()

	_, err := p.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	var le *raster.ImageLoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Source, "missing.png")

	_, err = p.DecodeImage([]byte("definitely not an image"))
	assert.True(t, errors.As(err, &le))

	_, err = p.LoadImageFromURL(context.Background(), "ftp://example.com/a.png")
	assert.ErrorContains(t, err, "unsupported URL scheme")
}

func TestLoadImageFromURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(7, 5, color.White)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page" {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	p := NewProcessor()
	r, err := p.LoadRaster(context.Background(), srv.URL+"/shot.png")
	require.NoError(t, err)
	assert.Equal(t, 7, r.W)
	assert.Equal(t, 5, r.H)

	_, err = p.LoadImageSmart(context.Background(), srv.URL+"/page")
	assert.ErrorContains(t, err, "does not point to an image")
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	b64, err := p.PrepareImageForModel(createTestImage(400, 200, color.White), "jpg", 100, 80)
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestSaliencyField(t *testing.T) {
	p := NewProcessor()
	m := image.NewGray(image.Rect(0, 0, 10, 10))
	m.SetGray(2, 3, color.Gray{Y: 200})
	m.SetGray(5, 5, color.Gray{Y: 100})

	f, err := p.SaliencyField(m, 10, 10, false)
	require.NoError(t, err)
	assert.InDelta(t, 1, f.At(2, 3), 1e-6)
	assert.InDelta(t, 0.5, f.At(5, 5), 1e-6)
	assert.InDelta(t, 0, f.At(0, 0), 1e-6)

	_, err = p.SaliencyField(m, 20, 20, false)
	var dm *raster.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 20, dm.WantW)
	assert.Equal(t, 10, dm.GotW)

	f, err = p.SaliencyField(m, 20, 20, true)
	require.NoError(t, err)
	assert.Equal(t, 20, f.W)
	assert.LessOrEqual(t, f.Max(), 1.0)
}

func TestMapPredictor(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, p.SaveImage(createTestImage(8, 8, color.Gray{Y: 50}), path, "png", 0, false))

	img, err := raster.FromImage(createTestImage(4, 4, color.White))
	require.NoError(t, err)

	_, err = NewMapPredictor(p, path, false).Predict(context.Background(), img)
	var dm *raster.DimensionMismatchError
	assert.True(t, errors.As(err, &dm))

	f, err := NewMapPredictor(p, path, true).Predict(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 4, f.W)
}
