package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Processor handles image loading, encoding and saving
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// LoadImageFromURL downloads and decodes an image from an http(s) URL
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	img, err := p.fetch(ctx, imageURL)
	if err != nil {
		return nil, &raster.ImageLoadError{Source: imageURL, Err: err}
	}
	return img, nil
}

func (p *Processor) fetch(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Attention-Analyzer/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return decodeImageFromBytes(data)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &raster.ImageLoadError{Source: path, Err: err}
	}
	img, err := decodeImageFromBytes(data)
	if err != nil {
		return nil, &raster.ImageLoadError{Source: path, Err: err}
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(ctx, source)
	}
	return p.LoadImage(source)
}

// DecodeImage decodes an in-memory image
func (p *Processor) DecodeImage(data []byte) (image.Image, error) {
	img, err := decodeImageFromBytes(data)
	if err != nil {
		return nil, &raster.ImageLoadError{Source: "bytes", Err: err}
	}
	return img, nil
}

// LoadRaster loads an image from a path or URL and converts it to a raster
func (p *Processor) LoadRaster(ctx context.Context, source string) (*raster.Image, error) {
	img, err := p.LoadImageSmart(ctx, source)
	if err != nil {
		return nil, err
	}
	r, err := raster.FromImage(img)
	if err != nil {
		return nil, &raster.ImageLoadError{Source: source, Err: err}
	}
	return r, nil
}

func decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		if err := webp.Encode(f, img, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// SaliencyField reads a grey-level saliency image into a unit field. When
// the map does not match w×h it is resampled only if resample is set;
// otherwise a DimensionMismatchError is returned.
func (p *Processor) SaliencyField(img image.Image, w, h int, resample bool) (*field.Field, error) {
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		if !resample {
			return nil, &raster.DimensionMismatchError{WantW: w, WantH: h, GotW: b.Dx(), GotH: b.Dy()}
		}
		img = imaging.Resize(img, w, h, imaging.Linear)
	}
	r, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	return field.UnitNormalize(r.Gray()), nil
}

// MapPredictor serves a precomputed saliency image as the base prediction.
type MapPredictor struct {
	processor *Processor
	source    string
	resample  bool
}

// NewMapPredictor creates a predictor backed by the saliency image at source
func NewMapPredictor(p *Processor, source string, resample bool) *MapPredictor {
	return &MapPredictor{processor: p, source: source, resample: resample}
}

// Predict loads the saliency image and fits it to img
func (m *MapPredictor) Predict(ctx context.Context, img *raster.Image) (*field.Field, error) {
	if img == nil {
		return nil, &raster.ImageLoadError{Source: m.source, Err: raster.ErrEmptyImage}
	}
	src, err := m.processor.LoadImageSmart(ctx, m.source)
	if err != nil {
		return nil, err
	}
	return m.processor.SaliencyField(src, img.W, img.H, m.resample)
}
