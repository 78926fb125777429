package metrics

import (
	"image"
	"math"
	"sort"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Whitespace is the share of near-white pixels and its grade.
type Whitespace struct {
	Ratio          float64 `json:"whitespace_ratio"`
	Grade          string  `json:"score"`
	Interpretation string  `json:"interpretation"`
}

// Whitespace measures the percentage of grey values above WhitespaceLevel.
// Grey is rounded to 8 bits before the comparison.
func (e *Extractor) Whitespace(img *raster.Image) Whitespace {
	cfg := e.config
	gray := img.Gray()
	n := 0
	for _, v := range gray.Data {
		if math.Round(v) > cfg.WhitespaceLevel {
			n++
		}
	}
	ratio := float64(n) / float64(gray.Len()) * 100

	switch {
	case ratio >= cfg.WhitespaceA:
		return Whitespace{ratio, "A", "High - Open, breathable layout"}
	case ratio >= cfg.WhitespaceB:
		return Whitespace{ratio, "B", "Moderate - Balanced density"}
	case ratio >= cfg.WhitespaceC:
		return Whitespace{ratio, "C", "Low - Dense information packing"}
	default:
		return Whitespace{ratio, "D", "Very Low - High visual density"}
	}
}

// CognitiveLoad combines the lack of whitespace with the clutter score.
func (e *Extractor) CognitiveLoad(whitespace, clutter float64) float64 {
	return (100-whitespace)*e.config.LoadWhitespace + clutter*e.config.LoadClutter
}

// Distribution is the share of mean saliency in each vertical third.
type Distribution struct {
	Top     float64 `json:"top"`
	Middle  float64 `json:"middle"`
	Bottom  float64 `json:"bottom"`
	Pattern string  `json:"pattern"`
}

// Distribution splits the field into horizontal bands of h/3 rows, the last
// band taking the remainder.
func (e *Extractor) Distribution(sal *field.Field) Distribution {
	third := sal.H / 3
	band := func(y0, y1 int) float64 {
		if y1 <= y0 {
			return 0
		}
		var s float64
		for _, v := range sal.Data[y0*sal.W : y1*sal.W] {
			s += v
		}
		return s / float64((y1-y0)*sal.W)
	}
	top := band(0, third)
	mid := band(third, 2*third)
	bot := band(2*third, sal.H)
	total := top + mid + bot + field.Epsilon

	d := Distribution{
		Top:    top / total * 100,
		Middle: mid / total * 100,
		Bottom: bot / total * 100,
	}
	switch {
	case d.Top > e.config.TopHeavy:
		d.Pattern = "Top-Heavy (Above the fold focus)"
	case d.Bottom > e.config.BottomEngaged:
		d.Pattern = "Distributed (Strong footer engagement)"
	default:
		d.Pattern = "Balanced Flow"
	}
	return d
}

// CTACandidate is a saturated region sized like a button.
type CTACandidate struct {
	Bounds   image.Rectangle `json:"bounds"`
	XRatio   float64         `json:"x_ratio"`
	YRatio   float64         `json:"y_ratio"`
	Saliency float64         `json:"saliency"`
}

// CTAPlacement summarises likely call-to-action elements.
type CTAPlacement struct {
	Count           int            `json:"cta_count"`
	Details         []CTACandidate `json:"cta_details"`
	Recommendations []string       `json:"recommendations"`
}

// CTAPlacement finds saturated regions between CTA.MinArea and CTA.MaxArea of
// the frame and ranks them by mean saliency within their bounding boxes.
func (e *Extractor) CTAPlacement(sal *field.Field, img *raster.Image) CTAPlacement {
	cfg := e.config.CTA
	total := float64(img.W * img.H)
	sat := img.Saturation()

	var cands []CTACandidate
	for _, r := range regions(sat, func(v float64) bool { return v > cfg.MinSaturation }) {
		a := float64(r.area)
		if a <= cfg.MinArea*total || a >= cfg.MaxArea*total {
			continue
		}
		cands = append(cands, CTACandidate{
			Bounds:   r.bounds,
			XRatio:   float64(r.bounds.Min.X) / float64(img.W),
			YRatio:   float64(r.bounds.Min.Y) / float64(img.H),
			Saliency: meanIn(sal, r.bounds),
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Saliency > cands[j].Saliency })

	p := CTAPlacement{Count: len(cands)}
	if len(cands) == 0 {
		p.Recommendations = []string{"No highly saturated elements detected. Ensure CTA contrasts with background."}
		return p
	}
	p.Details = cands[:min(len(cands), max(cfg.MaxDetails, 0))]

	top := cands[0]
	if top.Saliency < cfg.LowSaliency {
		p.Recommendations = append(p.Recommendations, "Primary CTA has low visual weight. Increase contrast or size.")
	}
	if top.YRatio > cfg.BottomRatio {
		p.Recommendations = append(p.Recommendations, "Primary CTA is located at the very bottom. Ensure visibility above the fold.")
	}
	if len(p.Recommendations) == 0 {
		p.Recommendations = []string{"CTA has strong visual presence."}
	}
	return p
}

func meanIn(f *field.Field, r image.Rectangle) float64 {
	r = r.Intersect(image.Rect(0, 0, f.W, f.H))
	if r.Empty() {
		return 0
	}
	var s float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s += f.At(x, y)
		}
	}
	return s / float64(r.Dx()*r.Dy())
}
