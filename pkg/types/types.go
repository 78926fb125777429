package types

import (
	"image"
	"math"
)

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect converts the box to pixel coordinates for a w×h frame, clipped to the
// frame. Degenerate boxes keep at least one pixel.
func (b Box) Rect(w, h int) image.Rectangle {
	fw, fh := float64(w), float64(h)
	x0 := int(math.Round(clamp(b.X, 0, 1) * fw))
	y0 := int(math.Round(clamp(b.Y, 0, 1) * fh))
	x1 := int(math.Round(clamp(b.X+b.W, 0, 1) * fw))
	y1 := int(math.Round(clamp(b.Y+b.H, 0, 1) * fh))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, w, h))
}

// Center returns the normalized centre of the box
func (b Box) Center() (cx, cy float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Face is one face reported by a vision model
type Face struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// FaceResult contains the face-location answer from the vision model
type FaceResult struct {
	Faces       []Face `json:"faces"`
	Description string `json:"description,omitempty"`
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
