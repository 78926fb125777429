package raster

import (
	"errors"
	"fmt"
)

// ErrEmptyImage is returned for nil or zero-sized images.
var ErrEmptyImage = errors.New("raster: empty image")

// ImageLoadError reports an input that could not be read or decoded.
// It aborts the analysis of that image only.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("image load failed: %v", e.Err)
	}
	return fmt.Sprintf("image load failed for %s: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// DimensionMismatchError reports a field whose shape differs from the image
// it is paired with.
type DimensionMismatchError struct {
	WantW, WantH int
	GotW, GotH   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: field is %dx%d, image is %dx%d", e.GotW, e.GotH, e.WantW, e.WantH)
}
