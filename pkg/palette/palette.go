// Package palette extracts the dominant colours of an image with k-means
// clustering and flags low-contrast pairs among them.
package palette

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/menta2k/attention-analyzer/pkg/contrast"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// Config controls the clustering.
type Config struct {
	Colors        int     `json:"colors"`
	MaxIterations int     `json:"max_iterations"`
	Convergence   float64 `json:"convergence"`
	MaxSamples    int     `json:"max_samples"`
	Seed          int64   `json:"seed"`
	// IssuePairs is how many of the most dominant colours are checked
	// against each other for contrast issues.
	IssuePairs int `json:"issue_pairs"`
}

// DefaultConfig returns five clusters with a fixed seed.
func DefaultConfig() Config {
	return Config{
		Colors:        5,
		MaxIterations: 20,
		Convergence:   1.0,
		MaxSamples:    5000,
		Seed:          42,
		IssuePairs:    3,
	}
}

// Swatch is one dominant colour and its share of the image.
type Swatch struct {
	Color      contrast.Color `json:"hex"`
	Percentage float64        `json:"percentage"`
}

// Extractor runs k-means over sampled pixels.
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

type point struct {
	R, G, B float64
}

func (p point) dist2(o point) float64 {
	dr, dg, db := p.R-o.R, p.G-o.G, p.B-o.B
	return dr*dr + dg*dg + db*db
}

// Extract returns the dominant colours sorted by share, most dominant first.
func (e *Extractor) Extract(img *raster.Image) ([]Swatch, error) {
	if img == nil || img.W == 0 || img.H == 0 {
		return nil, raster.ErrEmptyImage
	}
	if e.config.Colors < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", e.config.Colors)
	}

	points := e.sample(img)

	unique := make(map[point]int)
	for _, p := range points {
		unique[p]++
	}
	if len(unique) <= e.config.Colors {
		swatches := make([]Swatch, 0, len(unique))
		for p, n := range unique {
			swatches = append(swatches, swatch(p, float64(n)/float64(len(points))))
		}
		sortSwatches(swatches)
		return swatches, nil
	}

	rng := rand.New(rand.NewSource(e.config.Seed))
	centroids, weights := e.kmeans(points, e.config.Colors, rng)

	swatches := make([]Swatch, 0, len(centroids))
	for i, c := range centroids {
		if weights[i] == 0 {
			continue
		}
		swatches = append(swatches, swatch(c, weights[i]))
	}
	sortSwatches(swatches)
	return swatches, nil
}

func swatch(p point, share float64) Swatch {
	return Swatch{
		Color:      contrast.Color{R: uint8(p.R), G: uint8(p.G), B: uint8(p.B)},
		Percentage: share * 100,
	}
}

func sortSwatches(s []Swatch) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Percentage != s[j].Percentage {
			return s[i].Percentage > s[j].Percentage
		}
		return s[i].Color.Hex() < s[j].Color.Hex()
	})
}

// sample takes every pixel of small images and a regular grid of large ones.
func (e *Extractor) sample(img *raster.Image) []point {
	total := img.W * img.H
	step := 1
	if e.config.MaxSamples > 0 && total > e.config.MaxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(e.config.MaxSamples))), 1)
	}
	points := make([]point, 0, total/(step*step)+1)
	for y := 0; y < img.H; y += step {
		for x := 0; x < img.W; x += step {
			r, g, b := img.RGBAt(x, y)
			points = append(points, point{float64(r), float64(g), float64(b)})
		}
	}
	return points
}

func (e *Extractor) kmeans(points []point, k int, rng *rand.Rand) ([]point, []float64) {
	centroids := seedCentroids(points, k, rng)
	k = len(centroids)
	assignments := make([]int, len(points))
	for i, p := range points {
		assignments[i] = nearest(p, centroids)
	}

	for iter := 0; iter < e.config.MaxIterations; iter++ {
		next := make([]point, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignments[i]
			next[c].R += p.R
			next[c].G += p.G
			next[c].B += p.B
			counts[c]++
		}
		var movement float64
		for i := range next {
			if counts[i] == 0 {
				next[i] = centroids[i]
				continue
			}
			n := float64(counts[i])
			next[i] = point{next[i].R / n, next[i].G / n, next[i].B / n}
			movement += math.Sqrt(next[i].dist2(centroids[i]))
		}
		centroids = next

		changed := 0
		for i, p := range points {
			n := nearest(p, centroids)
			if assignments[i] != n {
				assignments[i] = n
				changed++
			}
		}
		if changed == 0 || movement/float64(k) < e.config.Convergence {
			break
		}
	}

	weights := make([]float64, k)
	for _, a := range assignments {
		weights[a]++
	}
	for i := range weights {
		weights[i] /= float64(len(points))
	}
	return centroids, weights
}

// seedCentroids is k-means++ initialisation driven by rng.
func seedCentroids(points []point, k int, rng *rand.Rand) []point {
	centroids := make([]point, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])
	d := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			best := math.MaxFloat64
			for _, c := range centroids {
				best = math.Min(best, p.dist2(c))
			}
			d[i] = best
			total += best
		}
		if total == 0 {
			break
		}
		target := rng.Float64() * total
		var cum float64
		chosen := len(points) - 1
		for i, v := range d {
			cum += v
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}

func nearest(p point, centroids []point) int {
	best, idx := math.MaxFloat64, 0
	for i, c := range centroids {
		if d := p.dist2(c); d < best {
			best, idx = d, i
		}
	}
	return idx
}

// Issue is a pair of dominant colours that fails normal-text WCAG.
type Issue struct {
	Color1 contrast.Color `json:"color1"`
	Color2 contrast.Color `json:"color2"`
	Ratio  float64        `json:"contrast"`
	Issue  string         `json:"issue"`
}

// ContrastIssues checks every pair among the first n swatches.
func ContrastIssues(swatches []Swatch, n int, t contrast.Thresholds) []Issue {
	n = min(n, len(swatches))
	var issues []Issue
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := t.Check(swatches[i].Color, swatches[j].Color)
			if r.Normal != contrast.Fail {
				continue
			}
			issues = append(issues, Issue{
				Color1: swatches[i].Color,
				Color2: swatches[j].Color,
				Ratio:  r.Ratio,
				Issue:  fmt.Sprintf("Low contrast (%.1f:1) - needs improvement for accessibility", r.Ratio),
			})
		}
	}
	return issues
}

// Background returns the most dominant colour, or white for an empty palette.
func Background(swatches []Swatch) contrast.Color {
	if len(swatches) == 0 {
		return contrast.Color{R: 255, G: 255, B: 255}
	}
	return swatches[0].Color
}
