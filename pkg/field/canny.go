package field

import "math"

// Canny runs the Canny edge detector over one or more channels of equal
// shape and returns a mask with 1 on edge pixels and 0 elsewhere.
//
// For multi-channel input each pixel takes the Sobel gradient of the channel
// with the largest L1 magnitude. Thresholds apply to the L1 magnitude
// |gx|+|gy|; hysteresis follows 8-connected neighbours from strong pixels.
func Canny(channels []*Field, low, high float64) *Field {
	if len(channels) == 0 || channels[0].Empty() {
		return New(0, 0)
	}
	w, h := channels[0].W, channels[0].H
	gx := New(w, h)
	gy := New(w, h)
	mag := New(w, h)
	for _, ch := range channels {
		cx, cy := Sobel(ch)
		for i := range mag.Data {
			m := math.Abs(cx.Data[i]) + math.Abs(cy.Data[i])
			if m > mag.Data[i] {
				mag.Data[i] = m
				gx.Data[i] = cx.Data[i]
				gy.Data[i] = cy.Data[i]
			}
		}
	}
	if low > high {
		low, high = high, low
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	// tan(22.5°) and tan(67.5°) split the quadrant into the four NMS directions.
	const tan22 = 0.41421356237
	const tan67 = 2.41421356237

	at := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag.Data[y*w+x]
	}

	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag.Data[i]
			if m <= low {
				continue
			}
			ax, ay := math.Abs(gx.Data[i]), math.Abs(gy.Data[i])
			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1, n2 = at(x-1, y), at(x+1, y)
			case ay >= ax*tan67:
				n1, n2 = at(x, y-1), at(x, y+1)
			case (gx.Data[i] > 0) == (gy.Data[i] > 0):
				n1, n2 = at(x-1, y-1), at(x+1, y+1)
			default:
				n1, n2 = at(x+1, y-1), at(x-1, y+1)
			}
			if m <= n1 || m < n2 {
				continue
			}
			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	out := New(w, h)
	out.Norm = NormUnit
	for i, s := range state {
		if s == strong {
			out.Data[i] = 1
		}
	}
	return out
}

// Density returns the fraction of non-zero values.
func Density(f *Field) float64 {
	if f.Empty() {
		return 0
	}
	n := 0
	for _, v := range f.Data {
		if v != 0 {
			n++
		}
	}
	return float64(n) / float64(len(f.Data))
}
