package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/attention-analyzer/pkg/client"
	"github.com/menta2k/attention-analyzer/pkg/processing"
	"github.com/menta2k/attention-analyzer/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// FacePrompt asks the model for every human face in a UI screenshot
const FacePrompt = `You are a face locator for user-interface screenshots.

Return JSON only:
{
  "faces": [
    {"box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}, "confidence": 0.0}
  ],
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels); x,y is the top-left corner.
- Include every visible human face: photos, avatars and illustrations of people.
- The box should tightly include the face only, not hair or shoulders.
- Do not guess real identities.
- If there are no faces, return {"faces": [], "description": "no faces"}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Config controls how the locator queries the model
type Config struct {
	Model         string  `json:"model"`
	Prompt        string  `json:"prompt,omitempty"`
	MinConfidence float64 `json:"min_confidence"`
	MaxDim        int     `json:"max_dim"`
	Quality       int     `json:"quality"`
}

// DefaultConfig returns sensible locator defaults
func DefaultConfig() Config {
	return Config{
		Prompt:        FacePrompt,
		MinConfidence: 0.3,
		MaxDim:        1024,
		Quality:       85,
	}
}

// FaceLocator finds faces with a vision model. It satisfies the face
// detector interface used by the saliency fuser.
type FaceLocator struct {
	client    client.VisionClient
	processor *processing.Processor
	config    Config
	logger    hclog.Logger
}

// NewFaceLocator creates a locator with a vision client
func NewFaceLocator(c client.VisionClient, config Config) *FaceLocator {
	if config.Prompt == "" {
		config.Prompt = FacePrompt
	}
	return &FaceLocator{
		client:    c,
		processor: processing.NewProcessor(),
		config:    config,
		logger:    hclog.NewNullLogger(),
	}
}

// SetLogger sets the logger used for model diagnostics
func (l *FaceLocator) SetLogger(logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	l.logger = logger
}

// LocateFaces asks the model for faces and returns its parsed answer. An
// answer without usable JSON yields an empty result, not an error.
func (l *FaceLocator) LocateFaces(ctx context.Context, img image.Image) (*types.FaceResult, error) {
	b64, err := l.processor.PrepareImageForModel(img, "jpg", l.config.MaxDim, l.config.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	raw, err := l.client.Query(ctx, l.config.Model, l.config.Prompt, b64)
	if err != nil {
		return nil, fmt.Errorf("face query failed: %w", err)
	}

	b := img.Bounds()
	result, err := parseFaceResult(raw, b.Dx(), b.Dy())
	if err != nil {
		l.logger.Warn("unusable face answer, assuming no faces", "error", err)
		return &types.FaceResult{}, nil
	}
	return result, nil
}

// DetectFaces returns face rectangles in pixel coordinates relative to the
// image origin, dropping faces below MinConfidence.
func (l *FaceLocator) DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	result, err := l.LocateFaces(ctx, img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	rects := make([]image.Rectangle, 0, len(result.Faces))
	for _, f := range result.Faces {
		if f.Confidence < l.config.MinConfidence {
			continue
		}
		if f.Box.W <= 0 || f.Box.H <= 0 {
			continue
		}
		rects = append(rects, f.Box.Rect(b.Dx(), b.Dy()))
	}
	l.logger.Debug("faces located", "reported", len(result.Faces), "kept", len(rects))
	return rects, nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (l *FaceLocator) TestVision(ctx context.Context, img image.Image) (string, error) {
	b64, err := l.processor.PrepareImageForModel(img, "jpg", l.config.MaxDim, l.config.Quality)
	if err != nil {
		return "", err
	}
	return l.client.Query(ctx, l.config.Model, SimpleTestPrompt, b64)
}

// parseFaceResult decodes the model answer, converting pixel boxes to
// normalized ones when the model ignored the instructions.
func parseFaceResult(raw string, imgW, imgH int) (*types.FaceResult, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var result types.FaceResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for i := range result.Faces {
		result.Faces[i].Box = normalizeBox(result.Faces[i].Box, imgW, imgH)
		result.Faces[i].Confidence = clamp(result.Faces[i].Confidence, 0, 1)
	}
	return &result, nil
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox ensures box coordinates are within [0,1] bounds
func normalizeBox(b types.Box, imgW, imgH int) types.Box {
	if imgW > 0 && imgH > 0 && (b.X > 1 || b.Y > 1 || b.W > 1 || b.H > 1) {
		b = types.Box{
			X: b.X / float64(imgW),
			Y: b.Y / float64(imgH),
			W: b.W / float64(imgW),
			H: b.H / float64(imgH),
		}
	}
	return types.Box{
		X: clamp(b.X, 0, 1),
		Y: clamp(b.Y, 0, 1),
		W: clamp(b.W, 0, 1),
		H: clamp(b.H, 0, 1),
	}
}

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reInline   = regexp.MustCompile(`(?m)//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reInline.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
