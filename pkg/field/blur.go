package field

import "math"

// truncate is the kernel half-width in standard deviations.
const truncate = 4.0

// GaussianKernel returns a normalised 1-D Gaussian of the given sigma.
func GaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(truncate*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		k[i+radius] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur smooths f with a separable Gaussian using BorderReflect.
// A non-positive sigma returns a copy.
func GaussianBlur(f *Field, sigma float64) *Field {
	if sigma <= 0 || f.Empty() {
		return f.Clone()
	}
	k := GaussianKernel(sigma)

	tmp := New(f.W, f.H)
	row := make([]float64, f.W)
	for y := 0; y < f.H; y++ {
		ConvolveLine(f.Data[y*f.W:(y+1)*f.W], row, k, BorderReflect)
		copy(tmp.Data[y*f.W:], row)
	}

	out := New(f.W, f.H)
	col := make([]float64, f.H)
	res := make([]float64, f.H)
	for x := 0; x < f.W; x++ {
		for y := 0; y < f.H; y++ {
			col[y] = tmp.Data[y*f.W+x]
		}
		ConvolveLine(col, res, k, BorderReflect)
		for y := 0; y < f.H; y++ {
			out.Data[y*f.W+x] = res[y]
		}
	}
	out.Norm = NormNone
	return out
}

// ConvolveLine correlates src with an odd-length centred kernel into dst.
func ConvolveLine(src, dst, kernel []float64, border Border) {
	n := len(src)
	radius := len(kernel) / 2
	for i := 0; i < n; i++ {
		var acc float64
		for j, w := range kernel {
			acc += w * src[border.index(i+j-radius, n)]
		}
		dst[i] = acc
	}
}

// BlurLine returns a Gaussian-smoothed copy of a 1-D profile.
func BlurLine(src []float64, sigma float64) []float64 {
	dst := make([]float64, len(src))
	if sigma <= 0 || len(src) == 0 {
		copy(dst, src)
		return dst
	}
	ConvolveLine(src, dst, GaussianKernel(sigma), BorderReflect)
	return dst
}
