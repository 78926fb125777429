// Package metrics derives UX metrics from a finished saliency field and the
// original image: focus concentration, hotspots, gaze-path efficiency, edge
// and colour clutter, whitespace and related layout scores.
package metrics

import (
	"errors"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Config holds every threshold and reference value used by the extractor.
type Config struct {
	FocusPercentile float64 `json:"focus_percentile"`

	HotspotThreshold float64 `json:"hotspot_threshold"`
	HotspotMinArea   float64 `json:"hotspot_min_area"`

	CannyLow         float64 `json:"canny_low"`
	CannyHigh        float64 `json:"canny_high"`
	EdgeReference    float64 `json:"edge_reference"`
	HueBins          int     `json:"hue_bins"`
	EntropyReference float64 `json:"entropy_reference"`
	EdgeWeight       float64 `json:"edge_weight"`
	EntropyWeight    float64 `json:"entropy_weight"`

	GazeNear        float64 `json:"gaze_near"`
	GazeFar         float64 `json:"gaze_far"`
	GazeNearScore   int     `json:"gaze_near_score"`
	GazeMidScore    int     `json:"gaze_mid_score"`
	GazeFarScore    int     `json:"gaze_far_score"`
	GazeSingleScore int     `json:"gaze_single_score"`

	CaptureMaxWeight float64 `json:"capture_max_weight"`
	CaptureTopWeight float64 `json:"capture_top_weight"`

	WhitespaceLevel float64   `json:"whitespace_level"`
	WhitespaceA     float64   `json:"whitespace_a"`
	WhitespaceB     float64   `json:"whitespace_b"`
	WhitespaceC     float64   `json:"whitespace_c"`
	LoadWhitespace  float64   `json:"load_whitespace_weight"`
	LoadClutter     float64   `json:"load_clutter_weight"`
	TopHeavy        float64   `json:"top_heavy"`
	BottomEngaged   float64   `json:"bottom_engaged"`
	CTA             CTAConfig `json:"cta"`
}

// CTAConfig controls call-to-action candidate detection.
type CTAConfig struct {
	MinSaturation float64 `json:"min_saturation"`
	MinArea       float64 `json:"min_area"`
	MaxArea       float64 `json:"max_area"`
	LowSaliency   float64 `json:"low_saliency"`
	BottomRatio   float64 `json:"bottom_ratio"`
	MaxDetails    int     `json:"max_details"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		FocusPercentile:  90,
		HotspotThreshold: 0.5,
		HotspotMinArea:   0.001,
		CannyLow:         100,
		CannyHigh:        200,
		EdgeReference:    0.15,
		HueBins:          50,
		EntropyReference: 3.5,
		EdgeWeight:       0.7,
		EntropyWeight:    0.3,
		GazeNear:         0.25,
		GazeFar:          0.5,
		GazeNearScore:    90,
		GazeMidScore:     70,
		GazeFarScore:     40,
		GazeSingleScore:  90,
		CaptureMaxWeight: 0.4,
		CaptureTopWeight: 0.6,
		WhitespaceLevel:  240,
		WhitespaceA:      40,
		WhitespaceB:      25,
		WhitespaceC:      15,
		LoadWhitespace:   0.6,
		LoadClutter:      0.4,
		TopHeavy:         60,
		BottomEngaged:    30,
		CTA: CTAConfig{
			MinSaturation: 100.0 / 255,
			MinArea:       0.001,
			MaxArea:       0.05,
			LowSaliency:   100.0 / 255,
			BottomRatio:   0.9,
			MaxDetails:    3,
		},
	}
}

// Metrics is the full set of values extracted for one image. Percentages are
// on [0,100].
type Metrics struct {
	FocusRatio          float64  `json:"focus_ratio"`
	HotspotCount        int      `json:"hotspot_count"`
	ClutterScore        float64  `json:"clutter_score"`
	EdgeDensity         float64  `json:"edge_density"`
	ColorEntropy        float64  `json:"color_entropy"`
	GazeEfficiencyScore int      `json:"gaze_efficiency_score"`
	Gaze                GazePath `json:"gaze_path"`

	AttentionCapture float64      `json:"attention_capture_score"`
	CognitiveLoad    float64      `json:"cognitive_load_estimate"`
	Whitespace       Whitespace   `json:"whitespace"`
	Distribution     Distribution `json:"saliency_distribution"`
	CTA              CTAPlacement `json:"cta_placement"`

	Hotspots []Hotspot `json:"hotspots"`
}

// Extractor computes Metrics.
type Extractor struct {
	config Config
}

// New creates an Extractor with default configuration.
func New() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewWithConfig creates an Extractor with custom configuration.
func NewWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// ErrNonFinite is returned for saliency fields carrying NaN or Inf.
var ErrNonFinite = errors.New("metrics: non-finite saliency")

// Extract computes all metrics for a unit-normalised saliency field and the
// image it was predicted for.
func (e *Extractor) Extract(sal *field.Field, img *raster.Image) (Metrics, error) {
	if img == nil {
		return Metrics{}, &raster.ImageLoadError{Err: raster.ErrEmptyImage}
	}
	if err := img.CheckShape(sal); err != nil {
		return Metrics{}, err
	}
	if !sal.Finite() {
		return Metrics{}, ErrNonFinite
	}

	hotspots := e.Hotspots(sal)
	edge := e.EdgeDensity(img)
	entropy := e.ColorEntropy(img)
	clutter := e.Clutter(edge, entropy)
	gaze := e.GazePath(hotspots, img.W, img.H)
	ws := e.Whitespace(img)

	return Metrics{
		FocusRatio:          e.FocusRatio(sal),
		HotspotCount:        len(hotspots),
		ClutterScore:        clutter,
		EdgeDensity:         edge * 100,
		ColorEntropy:        entropy,
		GazeEfficiencyScore: gaze.Score,
		Gaze:                gaze,
		AttentionCapture:    e.AttentionCapture(sal),
		CognitiveLoad:       e.CognitiveLoad(ws.Ratio, clutter),
		Whitespace:          ws,
		Distribution:        e.Distribution(sal),
		CTA:                 e.CTAPlacement(sal, img),
		Hotspots:            hotspots,
	}, nil
}

// FocusRatio is the percentage of pixels strictly above the field's own
// FocusPercentile.
func (e *Extractor) FocusRatio(sal *field.Field) float64 {
	if sal.Empty() {
		return 0
	}
	thr := sal.Percentile(e.config.FocusPercentile)
	n := 0
	for _, v := range sal.Data {
		if v > thr {
			n++
		}
	}
	return float64(n) / float64(sal.Len()) * 100
}

// AttentionCapture blends the peak saliency with the mean of the values above
// the focus percentile, on [0,100]. When nothing exceeds the percentile the
// percentile value itself stands in for that mean.
func (e *Extractor) AttentionCapture(sal *field.Field) float64 {
	if sal.Empty() {
		return 0
	}
	thr := sal.Percentile(e.config.FocusPercentile)
	var sum float64
	n := 0
	for _, v := range sal.Data {
		if v > thr {
			sum += v
			n++
		}
	}
	top := thr
	if n > 0 {
		top = sum / float64(n)
	}
	return (sal.Max()*e.config.CaptureMaxWeight + top*e.config.CaptureTopWeight) * 100
}
