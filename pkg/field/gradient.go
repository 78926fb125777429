package field

import "math"

// DefaultNoiseFloor is the gradient magnitude below which orientation is
// forced to zero. It is tuned for luminance on a 0–255 scale.
const DefaultNoiseFloor = 10.0

// Sobel returns the horizontal and vertical 3×3 Sobel derivatives of f.
func Sobel(f *Field) (gx, gy *Field) {
	gx = New(f.W, f.H)
	gy = New(f.W, f.H)
	if f.Empty() {
		return gx, gy
	}
	b := BorderReflect101
	for y := 0; y < f.H; y++ {
		ym := b.index(y-1, f.H) * f.W
		y0 := y * f.W
		yp := b.index(y+1, f.H) * f.W
		for x := 0; x < f.W; x++ {
			xm := b.index(x-1, f.W)
			xp := b.index(x+1, f.W)

			tl, tc, tr := f.Data[ym+xm], f.Data[ym+x], f.Data[ym+xp]
			ml, mr := f.Data[y0+xm], f.Data[y0+xp]
			bl, bc, br := f.Data[yp+xm], f.Data[yp+x], f.Data[yp+xp]

			gx.Data[y0+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy.Data[y0+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}

// GradientMagnitude returns sqrt(gx² + gy²) of the Sobel derivatives.
func GradientMagnitude(f *Field) *Field {
	gx, gy := Sobel(f)
	out := New(f.W, f.H)
	for i := range out.Data {
		out.Data[i] = math.Hypot(gx.Data[i], gy.Data[i])
	}
	return out
}

// OrientationMap returns the local gradient orientation of a luminance field
// in degrees within [0,180). Opposite directions share one orientation.
// Pixels whose gradient magnitude is below noiseFloor are set to 0.
func OrientationMap(lum *Field, noiseFloor float64) *Field {
	gx, gy := Sobel(lum)
	out := New(lum.W, lum.H)
	for i := range out.Data {
		if math.Hypot(gx.Data[i], gy.Data[i]) < noiseFloor {
			continue
		}
		deg := math.Atan2(gy.Data[i], gx.Data[i]) * 180 / math.Pi
		deg = math.Mod(deg, 180)
		if deg < 0 {
			deg += 180
		}
		if deg >= 180 {
			deg -= 180
		}
		out.Data[i] = deg
	}
	return out
}
