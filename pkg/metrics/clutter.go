package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/attention-analyzer/pkg/field"
	"github.com/menta2k/attention-analyzer/pkg/raster"
)

// EdgeDensity is the fraction of Canny edge pixels over all channels of img.
func (e *Extractor) EdgeDensity(img *raster.Image) float64 {
	edges := field.Canny(img.Channels(), e.config.CannyLow, e.config.CannyHigh)
	return field.Density(edges)
}

// ColorEntropy is the Shannon entropy (natural log) of the hue histogram.
func (e *Extractor) ColorEntropy(img *raster.Image) float64 {
	bins := e.config.HueBins
	if bins < 1 {
		return 0
	}
	hist := make([]float64, bins)
	hue := img.Hue()
	for _, h := range hue.Data {
		b := int(h / 360 * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}
	total := float64(hue.Len()) + field.Epsilon
	for i := range hist {
		hist[i] /= total
	}
	return stat.Entropy(hist)
}

// Clutter blends the edge and entropy scores, each capped at 100 against its
// reference value.
func (e *Extractor) Clutter(edgeDensity, entropy float64) float64 {
	cfg := e.config
	edgeScore := math.Min(100, edgeDensity/cfg.EdgeReference*100)
	colorScore := math.Min(100, entropy/cfg.EntropyReference*100)
	return edgeScore*cfg.EdgeWeight + colorScore*cfg.EntropyWeight
}
