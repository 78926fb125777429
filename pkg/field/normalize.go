package field

import "gonum.org/v1/gonum/stat"

// UnitNormalize min-max scales f into [0,1].
func UnitNormalize(f *Field) *Field {
	out := New(f.W, f.H)
	out.Norm = NormUnit
	if f.Empty() {
		return out
	}
	lo, hi := f.Min(), f.Max()
	span := hi - lo + Epsilon
	for i, v := range f.Data {
		out.Data[i] = clamp((v-lo)/span, 0, 1)
	}
	return out
}

// MaxNormalize divides f by its maximum, for non-negative maps whose zero
// level must stay at zero.
func MaxNormalize(f *Field) *Field {
	out := New(f.W, f.H)
	out.Norm = NormUnit
	if f.Empty() {
		return out
	}
	hi := f.Max() + Epsilon
	for i, v := range f.Data {
		out.Data[i] = clamp(v/hi, 0, 1)
	}
	return out
}

// PercentileNormalize maps the [lo, hi] percentile band of f onto [0,100],
// clipping values outside it.
func PercentileNormalize(f *Field, lo, hi float64) *Field {
	out := New(f.W, f.H)
	out.Norm = NormPercentile
	if f.Empty() {
		return out
	}
	p := Percentiles(f, lo, hi)
	span := p[1] - p[0] + Epsilon
	for i, v := range f.Data {
		out.Data[i] = clamp((v-p[0])/span, 0, 1) * 100
	}
	return out
}

// ZScoreNormalize standardises f, clips to ±3σ and maps that range onto
// [0,100].
func ZScoreNormalize(f *Field) *Field {
	out := New(f.W, f.H)
	out.Norm = NormPercentile
	if f.Empty() {
		return out
	}
	mu, sd := stat.PopMeanStdDev(f.Data, nil)
	sigma := sd + Epsilon
	for i, v := range f.Data {
		z := clamp((v-mu)/sigma, -3, 3)
		out.Data[i] = clamp((z+3)/6*100, 0, 100)
	}
	return out
}
