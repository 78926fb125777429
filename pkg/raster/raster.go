// Package raster holds decoded input images as planar float channels and the
// colour-space conversions the clutter and metrics code needs.
package raster

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/menta2k/attention-analyzer/pkg/field"
)

// Image is an immutable H×W raster with one (grey) or three (RGB) channels.
// Channel values are on a 0–255 scale.
type Image struct {
	W      int
	H      int
	C      int
	planes [][]float64
}

// FromImage converts any image.Image. Grey images keep a single channel,
// everything else is flattened to RGB. Alpha is dropped and the stored
// colour kept, so a transparent white pixel stays white. Sources that only
// hold premultiplied colour (*image.RGBA) are un-premultiplied first.
func FromImage(img image.Image) (*Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	switch src := img.(type) {
	case *image.Gray:
		g := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g[y*w+x] = float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return &Image{W: w, H: h, C: 1, planes: [][]float64{g}}, nil
	case *image.Gray16:
		g := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g[y*w+x] = float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y) / 257
			}
		}
		return &Image{W: w, H: h, C: 1, planes: [][]float64{g}}, nil
	}

	r := make([]float64, w*h)
	g := make([]float64, w*h)
	bl := make([]float64, w*h)
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				i := y*w + x
				r[i] = float64(row[x*4])
				g[i] = float64(row[x*4+1])
				bl[i] = float64(row[x*4+2])
			}
		}
	case *image.NRGBA64:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := src.NRGBA64At(b.Min.X+x, b.Min.Y+y)
				i := y*w + x
				r[i] = float64(c.R >> 8)
				g[i] = float64(c.G >> 8)
				bl[i] = float64(c.B >> 8)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := y*w + x
				r[i] = float64(c.R)
				g[i] = float64(c.G)
				bl[i] = float64(c.B)
			}
		}
	}
	return &Image{W: w, H: h, C: 3, planes: [][]float64{r, g, bl}}, nil
}

// Channel returns a copy of channel i as a raw field.
func (im *Image) Channel(i int) *field.Field {
	data := make([]float64, im.W*im.H)
	copy(data, im.planes[i])
	return &field.Field{W: im.W, H: im.H, Data: data}
}

// Channels returns copies of every channel.
func (im *Image) Channels() []*field.Field {
	out := make([]*field.Field, im.C)
	for i := range out {
		out[i] = im.Channel(i)
	}
	return out
}

// RGBAt returns the 8-bit colour at (x, y).
func (im *Image) RGBAt(x, y int) (r, g, b uint8) {
	i := y*im.W + x
	if im.C == 1 {
		v := uint8(im.planes[0][i])
		return v, v, v
	}
	return uint8(im.planes[0][i]), uint8(im.planes[1][i]), uint8(im.planes[2][i])
}

// Gray returns BT.601 luma (0.299R + 0.587G + 0.114B) on a 0–255 scale.
func (im *Image) Gray() *field.Field {
	if im.C == 1 {
		return im.Channel(0)
	}
	out := field.New(im.W, im.H)
	r, g, b := im.planes[0], im.planes[1], im.planes[2]
	for i := range out.Data {
		out.Data[i] = 0.299*r[i] + 0.587*g[i] + 0.114*b[i]
	}
	return out
}

// CheckShape returns a DimensionMismatchError when f does not share the
// image's width and height.
func (im *Image) CheckShape(f *field.Field) error {
	if f == nil || f.W != im.W || f.H != im.H {
		gw, gh := 0, 0
		if f != nil {
			gw, gh = f.W, f.H
		}
		return &DimensionMismatchError{WantW: im.W, WantH: im.H, GotW: gw, GotH: gh}
	}
	return nil
}

// ToImage renders the raster back into an NRGBA image.
func (im *Image) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.W, im.H))
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r, g, b := im.RGBAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

// Lab converts the image to CIE L*a*b* (D65) using the 8-bit convention:
// L* scaled to 0–255 and a*, b* offset by 128. Conversions are cached per
// distinct colour since UI screenshots repeat few colours.
func (im *Image) Lab() (l, a, b *field.Field) {
	l = field.New(im.W, im.H)
	a = field.New(im.W, im.H)
	b = field.New(im.W, im.H)
	cache := make(map[uint32][3]float64)
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r, g, bl := im.RGBAt(x, y)
			key := uint32(r)<<16 | uint32(g)<<8 | uint32(bl)
			lab, ok := cache[key]
			if !ok {
				c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(bl) / 255}
				cl, ca, cb := c.Lab()
				lab = [3]float64{cl * 255, ca*100 + 128, cb*100 + 128}
				cache[key] = lab
			}
			i := y*im.W + x
			l.Data[i], a.Data[i], b.Data[i] = lab[0], lab[1], lab[2]
		}
	}
	return l, a, b
}

// Hue returns the HSV hue of every pixel in degrees [0,360). Achromatic
// pixels have hue 0.
func (im *Image) Hue() *field.Field {
	out := field.New(im.W, im.H)
	if im.C == 1 {
		return out
	}
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r, g, b := im.RGBAt(x, y)
			c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
			h, _, _ := c.Hsv()
			if h >= 360 {
				h -= 360
			}
			out.Data[y*im.W+x] = h
		}
	}
	return out
}

// Saturation returns the HSV saturation of every pixel in [0,1].
func (im *Image) Saturation() *field.Field {
	out := field.New(im.W, im.H)
	if im.C == 1 {
		return out
	}
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			r, g, b := im.RGBAt(x, y)
			c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
			_, s, _ := c.Hsv()
			out.Data[y*im.W+x] = s
		}
	}
	return out
}
