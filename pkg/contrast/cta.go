package contrast

import "fmt"

// DefaultCTA is the call-to-action colour proposed when nothing else applies.
var DefaultCTA = MustParseHex("#F57C00")

// Combo is a background/CTA pairing known to meet WCAG.
type Combo struct {
	Background Color
	CTA        Color
	Emotion    string
}

// Combos lists accessible CTA colours per common background.
var Combos = []Combo{
	{MustParseHex("#FFFFFF"), MustParseHex("#B71C1C"), "urgency"},
	{MustParseHex("#FFFFFF"), MustParseHex("#E65100"), "friendliness"},
	{MustParseHex("#FFFFFF"), MustParseHex("#0D47A1"), "trust"},
	{MustParseHex("#333333"), MustParseHex("#FF6D00"), "energy"},
	{MustParseHex("#333333"), MustParseHex("#00C853"), "success"},
	{MustParseHex("#001F3F"), MustParseHex("#FFD700"), "attention"},
}

// Recommendation is a proposed CTA colour for a background.
type Recommendation struct {
	Color         Color   `json:"recommended_color"`
	Ratio         float64 `json:"contrast_ratio"`
	Level         Level   `json:"wcag_level"`
	Rationale     string  `json:"rationale"`
	Justification string  `json:"justification"`
}

// RecommendCTA proposes a call-to-action colour for bg. The default colour is
// kept when it passes normal-text AA; otherwise the first combo listed for the
// same background is used. Unknown backgrounds keep the failing default.
func (t Thresholds) RecommendCTA(bg Color) Recommendation {
	cta := DefaultCTA
	rationale := "Universal high-conversion color (friendliness + action)"
	ratio := Ratio(bg, cta)
	level := t.Level(ratio, false)

	if level == Fail {
		for _, c := range Combos {
			if c.Background == bg {
				cta = c.CTA
				ratio = Ratio(bg, cta)
				level = t.Level(ratio, false)
				rationale = fmt.Sprintf("Adjusted for accessibility. Evokes %s.", c.Emotion)
				break
			}
		}
	}

	return Recommendation{
		Color:         cta,
		Ratio:         ratio,
		Level:         level,
		Rationale:     rationale,
		Justification: fmt.Sprintf("Provides %s contrast (%.2f:1) against background.", level, ratio),
	}
}

// RecommendCTA uses the default thresholds.
func RecommendCTA(bg Color) Recommendation {
	return DefaultThresholds().RecommendCTA(bg)
}
