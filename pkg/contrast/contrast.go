// Package contrast implements WCAG 2.0 relative luminance, contrast ratio and
// conformance levels between two colours.
package contrast

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit sRGB triple.
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#RRGGBB" or "#RGB" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	if len(s) != 7 {
		return Color{}, fmt.Errorf("invalid hex colour %q: want 3 or 6 digits", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the colour as upper-case "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MarshalText encodes the colour as its hex string.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex string.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Level is a WCAG conformance level.
type Level string

const (
	AAA  Level = "AAA"
	AA   Level = "AA"
	Fail Level = "FAIL"
)

// Passes reports whether the level is AA or better.
func (l Level) Passes() bool { return l == AA || l == AAA }

// Thresholds holds the minimum ratios for each level.
type Thresholds struct {
	NormalAAA float64 `json:"normal_aaa"`
	NormalAA  float64 `json:"normal_aa"`
	LargeAAA  float64 `json:"large_aaa"`
	LargeAA   float64 `json:"large_aa"`
}

// DefaultThresholds are the WCAG 2.0 values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NormalAAA: 7.0,
		NormalAA:  4.5,
		LargeAAA:  4.5,
		LargeAA:   3.0,
	}
}

// Luminance returns the relative luminance of c in [0,1].
func Luminance(c Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(v uint8) float64 {
	f := float64(v) / 255
	if f <= 0.03928 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

// Ratio returns the contrast ratio between two colours, in [1,21].
func Ratio(c1, c2 Color) float64 {
	l1, l2 := Luminance(c1), Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// Level classifies a ratio for normal or large text.
func (t Thresholds) Level(ratio float64, largeText bool) Level {
	aaa, aa := t.NormalAAA, t.NormalAA
	if largeText {
		aaa, aa = t.LargeAAA, t.LargeAA
	}
	switch {
	case ratio >= aaa:
		return AAA
	case ratio >= aa:
		return AA
	default:
		return Fail
	}
}

// LevelFor classifies a ratio with the default WCAG thresholds.
func LevelFor(ratio float64, largeText bool) Level {
	return DefaultThresholds().Level(ratio, largeText)
}

// Result is the outcome of checking one colour pair.
type Result struct {
	Foreground Color   `json:"foreground"`
	Background Color   `json:"background"`
	Ratio      float64 `json:"contrast_ratio"`
	Normal     Level   `json:"wcag_level"`
	Large      Level   `json:"wcag_level_large"`
}

// Check computes the ratio and both levels for a pair.
func (t Thresholds) Check(fg, bg Color) Result {
	r := Ratio(fg, bg)
	return Result{
		Foreground: fg,
		Background: bg,
		Ratio:      r,
		Normal:     t.Level(r, false),
		Large:      t.Level(r, true),
	}
}

// Check evaluates a pair with the default thresholds.
func Check(fg, bg Color) Result {
	return DefaultThresholds().Check(fg, bg)
}

// CheckHex parses and checks two hex colours.
func CheckHex(fg, bg string) (Result, error) {
	f, err := ParseHex(fg)
	if err != nil {
		return Result{}, err
	}
	b, err := ParseHex(bg)
	if err != nil {
		return Result{}, err
	}
	return Check(f, b), nil
}
