package field

import "fmt"

// Border selects how samples outside the grid are synthesised.
type Border int

const (
	// BorderReflect101 mirrors without repeating the edge sample: dcb|abcd|cba.
	// Box filters and derivative kernels use it.
	BorderReflect101 Border = iota
	// BorderReflect mirrors including the edge sample: cba|abcd|dcb.
	// Gaussian smoothing uses it.
	BorderReflect
)

// index maps a possibly out-of-range coordinate into [0, n).
func (b Border) index(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		switch b {
		case BorderReflect:
			if i < 0 {
				i = -i - 1
			}
			if i >= n {
				i = 2*n - 1 - i
			}
		default:
			if i < 0 {
				i = -i
			}
			if i >= n {
				i = 2*n - 2 - i
			}
		}
	}
	return i
}

// cancellation is the relative size of E[X²] below which a variance is
// indistinguishable from rounding in the running sums.
const cancellation = 1e-12

// BoxMean returns the uniform-weighted local mean over a window×window
// neighbourhood. The window is anchored at window/2 so even sizes extend one
// sample further before the centre than after it. Borders use
// BorderReflect101. Running sums keep the cost O(W·H) regardless of window.
func BoxMean(f *Field, window int) (*Field, error) {
	if f.Empty() {
		return nil, ErrEmptyField
	}
	if window < 1 {
		return nil, fmt.Errorf("field: window size must be positive, got %d", window)
	}

	tmp := New(f.W, f.H)
	row := make([]float64, f.W)
	for y := 0; y < f.H; y++ {
		boxLine(f.Data[y*f.W:(y+1)*f.W], row, window)
		copy(tmp.Data[y*f.W:], row)
	}

	out := New(f.W, f.H)
	col := make([]float64, f.H)
	res := make([]float64, f.H)
	for x := 0; x < f.W; x++ {
		for y := 0; y < f.H; y++ {
			col[y] = tmp.Data[y*f.W+x]
		}
		boxLine(col, res, window)
		for y := 0; y < f.H; y++ {
			out.Data[y*f.W+x] = res[y]
		}
	}
	return out, nil
}

func boxLine(src, dst []float64, k int) {
	n := len(src)
	anchor := k / 2
	var sum float64
	for j := -anchor; j < k-anchor; j++ {
		sum += src[BorderReflect101.index(j, n)]
	}
	inv := 1 / float64(k)
	for i := 0; i < n; i++ {
		dst[i] = sum * inv
		sum += src[BorderReflect101.index(i+k-anchor, n)]
		sum -= src[BorderReflect101.index(i-anchor, n)]
	}
}

// LocalVariance returns the per-pixel variance over a window×window
// neighbourhood as E[X²] − E[X]², both terms box-filtered with BoxMean.
// Values within floating-point cancellation noise of zero, including
// negative ones, are clamped to zero.
func LocalVariance(f *Field, window int) (*Field, error) {
	mean, err := BoxMean(f, window)
	if err != nil {
		return nil, err
	}
	sq := f.Map(func(v float64) float64 { return v * v })
	meanSq, err := BoxMean(sq, window)
	if err != nil {
		return nil, err
	}

	out := New(f.W, f.H)
	for i := range out.Data {
		v := meanSq.Data[i] - mean.Data[i]*mean.Data[i]
		if v <= cancellation*meanSq.Data[i] {
			v = 0
		}
		out.Data[i] = v
	}
	return out, nil
}
