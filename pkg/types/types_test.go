package types

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxRect(t *testing.T) {
	cases := []struct {
		name string
		box  Box
		want image.Rectangle
	}{
		{"centered", Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, image.Rect(50, 25, 150, 75)},
		{"clipped", Box{X: 0.9, Y: -0.2, W: 0.5, H: 0.4}, image.Rect(180, 0, 200, 20)},
		{"degenerate", Box{X: 0.5, Y: 0.5}, image.Rect(100, 50, 101, 51)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.box.Rect(200, 100))
		})
	}
}

func TestBoxCenter(t *testing.T) {
	cx, cy := Box{X: 0.1, Y: 0.2, W: 0.4, H: 0.2}.Center()
	assert.InDelta(t, 0.3, cx, 1e-9)
	assert.InDelta(t, 0.3, cy, 1e-9)
}
