package contrast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = Color{255, 255, 255}
	black = Color{0, 0, 0}
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#FFFFFF", white},
		{"000000", black},
		{"#f57c00", Color{0xF5, 0x7C, 0x00}},
		{"#abc", Color{0xAA, 0xBB, 0xCC}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "#12", "#GGGGGG", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, s := range []string{"#B71C1C", "#0D47A1", "#001F3F"} {
		c := MustParseHex(s)
		assert.Equal(t, s, c.Hex())
	}

	data, err := json.Marshal(struct{ C Color }{MustParseHex("#333333")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"C":"#333333"}`, string(data))

	var back struct{ C Color }
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Color{0x33, 0x33, 0x33}, back.C)
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 1.0, Luminance(white), 1e-9)
	assert.InDelta(t, 0.0, Luminance(black), 1e-12)
	// Pure green carries the largest weight.
	assert.InDelta(t, 0.7152, Luminance(Color{0, 255, 0}), 1e-9)
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 21.0, Ratio(white, black), 0.01)
	assert.InDelta(t, 21.0, Ratio(black, white), 0.01)

	for _, c := range []Color{white, black, {12, 200, 99}, {128, 128, 128}} {
		assert.InDelta(t, 1.0, Ratio(c, c), 1e-12)
	}
}

func TestLevel(t *testing.T) {
	cases := []struct {
		ratio float64
		large bool
		want  Level
	}{
		{21, false, AAA},
		{7, false, AAA},
		{6.99, false, AA},
		{4.5, false, AA},
		{4.49, false, Fail},
		{4.5, true, AAA},
		{3, true, AA},
		{2.99, true, Fail},
		{1, true, Fail},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.ratio, tc.large), "ratio %.2f large %v", tc.ratio, tc.large)
	}

	strict := Thresholds{NormalAAA: 10, NormalAA: 8, LargeAAA: 6, LargeAA: 5}
	assert.Equal(t, AA, strict.Level(9, false))
	assert.Equal(t, Fail, strict.Level(4.5, true))
}

func TestCheck(t *testing.T) {
	r := Check(black, white)
	assert.Equal(t, AAA, r.Normal)
	assert.Equal(t, AAA, r.Large)
	assert.True(t, r.Normal.Passes())

	r, err := CheckHex("#777777", "#FFFFFF")
	require.NoError(t, err)
	assert.InDelta(t, 4.48, r.Ratio, 0.01)
	assert.Equal(t, Fail, r.Normal)
	assert.Equal(t, AA, r.Large)

	_, err = CheckHex("nope", "#FFFFFF")
	assert.Error(t, err)
}

func TestRecommendCTA(t *testing.T) {
	t.Run("default passes on black", func(t *testing.T) {
		rec := RecommendCTA(black)
		assert.Equal(t, DefaultCTA, rec.Color)
		assert.Equal(t, AAA, rec.Level)
	})

	t.Run("white falls back to accessible combo", func(t *testing.T) {
		rec := RecommendCTA(white)
		assert.Equal(t, "#B71C1C", rec.Color.Hex())
		assert.True(t, rec.Level.Passes())
		assert.Contains(t, rec.Rationale, "urgency")
	})

	t.Run("unknown background keeps default", func(t *testing.T) {
		rec := RecommendCTA(MustParseHex("#777777"))
		assert.Equal(t, DefaultCTA, rec.Color)
		assert.Equal(t, Fail, rec.Level)
	})
}
