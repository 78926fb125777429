// Package field provides the H×W scalar grids shared by the saliency, clutter
// and metrics packages, together with the windowed statistics, filters and
// normalisations they are built from.
package field

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon guards every normalisation divisor.
const Epsilon = 1e-8

// Norm records which normalisation convention a field's values follow.
type Norm int

const (
	// NormNone marks raw values (variances, gradients, log densities).
	NormNone Norm = iota
	// NormPercentile marks values clipped to [0,100] between two percentiles.
	NormPercentile
	// NormUnit marks values min-max scaled to [0,1].
	NormUnit
)

// String returns the convention name.
func (n Norm) String() string {
	switch n {
	case NormPercentile:
		return "percentile"
	case NormUnit:
		return "unit"
	default:
		return "raw"
	}
}

// ErrEmptyField is returned when a field has no pixels.
var ErrEmptyField = errors.New("field: empty field")

// Field is a row-major grid of float64 values.
type Field struct {
	W    int
	H    int
	Data []float64
	Norm Norm
}

// New allocates a zeroed raw field.
func New(w, h int) *Field {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Field{W: w, H: h, Data: make([]float64, w*h)}
}

// FromSlice wraps data as a w×h raw field. The slice is not copied.
func FromSlice(w, h int, data []float64) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("field: invalid dimensions %dx%d", w, h)
	}
	if len(data) != w*h {
		return nil, fmt.Errorf("field: got %d values for %dx%d", len(data), w, h)
	}
	return &Field{W: w, H: h, Data: data}, nil
}

// Len returns the number of pixels.
func (f *Field) Len() int { return len(f.Data) }

// Empty reports whether the field has no pixels.
func (f *Field) Empty() bool { return f == nil || len(f.Data) == 0 }

// At returns the value at (x, y).
func (f *Field) At(x, y int) float64 { return f.Data[y*f.W+x] }

// Set stores v at (x, y).
func (f *Field) Set(x, y int, v float64) { f.Data[y*f.W+x] = v }

// SameShape reports whether g has the same width and height as f.
func (f *Field) SameShape(g *Field) bool {
	return f != nil && g != nil && f.W == g.W && f.H == g.H
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	data := make([]float64, len(f.Data))
	copy(data, f.Data)
	return &Field{W: f.W, H: f.H, Data: data, Norm: f.Norm}
}

// Map returns a new raw field with fn applied to every value.
func (f *Field) Map(fn func(float64) float64) *Field {
	out := New(f.W, f.H)
	for i, v := range f.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// Min returns the smallest value.
func (f *Field) Min() float64 {
	if f.Empty() {
		return 0
	}
	return floats.Min(f.Data)
}

// Max returns the largest value.
func (f *Field) Max() float64 {
	if f.Empty() {
		return 0
	}
	return floats.Max(f.Data)
}

// Mean returns the spatial mean.
func (f *Field) Mean() float64 {
	if f.Empty() {
		return 0
	}
	return stat.Mean(f.Data, nil)
}

// Finite reports whether every value is a finite number.
func (f *Field) Finite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Percentile returns the p-th percentile (p in [0,100]) using linear
// interpolation of the empirical distribution.
func (f *Field) Percentile(p float64) float64 {
	return Percentiles(f, p)[0]
}

// Percentiles returns several percentiles from a single sort of the values.
func Percentiles(f *Field, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if f.Empty() {
		return out
	}
	sorted := make([]float64, len(f.Data))
	copy(sorted, f.Data)
	sort.Float64s(sorted)
	for i, p := range ps {
		q := clamp(p/100, 0, 1)
		out[i] = stat.Quantile(q, stat.LinInterp, sorted, nil)
	}
	return out
}

// Add returns f + scale*g.
func (f *Field) Add(g *Field, scale float64) (*Field, error) {
	if !f.SameShape(g) {
		return nil, fmt.Errorf("field: shape %dx%d does not match %dx%d", g.W, g.H, f.W, f.H)
	}
	out := New(f.W, f.H)
	for i := range f.Data {
		out.Data[i] = f.Data[i] + scale*g.Data[i]
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
