package metrics

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/menta2k/attention-analyzer/pkg/field"
)

// Hotspot is a connected region of the thresholded saliency field.
type Hotspot struct {
	Bounds       image.Rectangle `json:"bounds"`
	Area         int             `json:"area"`
	CX           float64         `json:"cx"`
	CY           float64         `json:"cy"`
	MeanSaliency float64         `json:"mean_saliency"`
}

// region accumulates one 8-connected component.
type region struct {
	bounds     image.Rectangle
	area       int
	sumX, sumY float64
	sumV       float64
}

// regions labels the 8-connected components of the pixels for which keep
// returns true. Components come out in raster order of their first pixel.
func regions(f *field.Field, keep func(v float64) bool) []region {
	w, h := f.W, f.H
	seen := make([]bool, w*h)
	var out []region
	stack := make([]int, 0, 256)

	for start, v := range f.Data {
		if seen[start] || !keep(v) {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		sx, sy := start%w, start/w
		r := region{bounds: image.Rect(sx, sy, sx+1, sy+1)}

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			r.area++
			r.sumX += float64(x)
			r.sumY += float64(y)
			r.sumV += f.Data[i]
			r.bounds = r.bounds.Union(image.Rect(x, y, x+1, y+1))

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					j := ny*w + nx
					if !seen[j] && keep(f.Data[j]) {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// Hotspots returns the regions above HotspotThreshold whose pixel area
// exceeds HotspotMinArea of the frame.
func (e *Extractor) Hotspots(sal *field.Field) []Hotspot {
	if sal.Empty() {
		return nil
	}
	thr := e.config.HotspotThreshold
	minArea := e.config.HotspotMinArea * float64(sal.Len())

	var out []Hotspot
	for _, r := range regions(sal, func(v float64) bool { return v > thr }) {
		if float64(r.area) <= minArea {
			continue
		}
		n := float64(r.area)
		out = append(out, Hotspot{
			Bounds:       r.bounds,
			Area:         r.area,
			CX:           r.sumX / n,
			CY:           r.sumY / n,
			MeanSaliency: r.sumV / n,
		})
	}
	return out
}

// GazePath describes how far the eye travels between hotspots.
type GazePath struct {
	Score          int     `json:"score"`
	DistanceRatio  float64 `json:"distance_ratio"`
	Insight        string  `json:"insight"`
	Recommendation string  `json:"recommendation"`
}

// GazePath visits hotspot centroids top-to-bottom then left-to-right and
// scores the mean hop length relative to the frame diagonal.
func (e *Extractor) GazePath(hotspots []Hotspot, w, h int) GazePath {
	cfg := e.config
	if len(hotspots) < 2 {
		return GazePath{
			Score:          cfg.GazeSingleScore,
			Insight:        "Single focal point creates direct, efficient scanning path.",
			Recommendation: "Excellent for conversion-focused pages.",
		}
	}

	pts := make([][2]float64, len(hotspots))
	for i, hs := range hotspots {
		pts[i] = [2]float64{hs.CX, hs.CY}
	}
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i][1] != pts[j][1] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})

	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i][0]-pts[i-1][0], pts[i][1]-pts[i-1][1])
	}
	diag := math.Hypot(float64(w), float64(h))
	ratio := total / float64(len(pts)-1) / diag

	switch {
	case ratio < cfg.GazeNear:
		return GazePath{
			Score:          cfg.GazeNearScore,
			DistanceRatio:  ratio,
			Insight:        "Hotspots are tightly clustered, minimizing eye travel distance.",
			Recommendation: "Excellent scanning efficiency. Maintain current layout.",
		}
	case ratio < cfg.GazeFar:
		return GazePath{
			Score:          cfg.GazeMidScore,
			DistanceRatio:  ratio,
			Insight:        "Moderate gaze path length. Users scan naturally between focal points.",
			Recommendation: "Good. Consider grouping related elements closer if possible.",
		}
	default:
		return GazePath{
			Score:          cfg.GazeFarScore,
			DistanceRatio:  ratio,
			Insight:        fmt.Sprintf("Hotspots are widely dispersed (%d%% of screen diagonal). High eye travel required.", int(ratio*100)),
			Recommendation: "Reduce scanning fatigue: group related CTAs within closer proximity.",
		}
	}
}
