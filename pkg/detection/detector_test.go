package detection

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/attention-analyzer/pkg/client"
	"github.com/menta2k/attention-analyzer/pkg/types"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func answer(s string) client.Func {
	return func(ctx context.Context, model, prompt, imgB64 string) (string, error) {
		return s, nil
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"faces":[]}`, `{"faces":[]}`},
		{"fenced", "```json\n{\"faces\":[]}\n```", `{"faces":[]}`},
		{"trailing comma", `{"faces":[1,2,],}`, `{"faces":[1,2]}`},
		{"comments", "{\n// note\n\"a\": 1 /* x */\n}", "{\n\n\"a\": 1 \n}"},
		{"prose around", `Sure! {"faces":[]} Hope that helps.`, `{"faces":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeModelJSON(tc.in))
		})
	}
}

func TestParseFaceResult(t *testing.T) {
	res, err := parseFaceResult(`{"faces":[{"box":{"x":0.1,"y":0.2,"w":0.3,"h":0.4},"confidence":0.9}],"description":"one"}`, 100, 100)
	require.NoError(t, err)
	want := &types.FaceResult{
		Faces:       []types.Face{{Box: types.Box{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}, Confidence: 0.9}},
		Description: "one",
	}
	assert.Empty(t, cmp.Diff(want, res))

	res, err = parseFaceResult(`{"faces":[{"box":{"x":50,"y":20,"w":100,"h":40},"confidence":2}]}`, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, types.Box{X: 0.25, Y: 0.2, W: 0.5, H: 0.4}, res.Faces[0].Box)
	assert.Equal(t, 1.0, res.Faces[0].Confidence)

	_, err = parseFaceResult("I can't see any faces.", 10, 10)
	assert.Error(t, err)
}

func TestDetectFaces(t *testing.T) {
	img := createTestImage(200, 100, color.White)

	t.Run("pixel rectangles", func(t *testing.T) {
		l := NewFaceLocator(answer(`{"faces":[
			{"box":{"x":0.25,"y":0.25,"w":0.5,"h":0.5},"confidence":0.8},
			{"box":{"x":0.0,"y":0.0,"w":0.1,"h":0.1},"confidence":0.1},
		]}`), DefaultConfig())
		rects, err := l.DetectFaces(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, []image.Rectangle{image.Rect(50, 25, 150, 75)}, rects)
	})

	t.Run("unparseable answer means no faces", func(t *testing.T) {
		l := NewFaceLocator(answer("There is a person in the top left."), DefaultConfig())
		rects, err := l.DetectFaces(context.Background(), img)
		require.NoError(t, err)
		assert.Empty(t, rects)
	})

	t.Run("client error propagates", func(t *testing.T) {
		boom := errors.New("connection refused")
		l := NewFaceLocator(client.Func(func(ctx context.Context, model, prompt, imgB64 string) (string, error) {
			return "", boom
		}), DefaultConfig())
		_, err := l.DetectFaces(context.Background(), img)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("request carries image and prompt", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model = "llava"
		var gotModel, gotPrompt, gotImage string
		l := NewFaceLocator(client.Func(func(ctx context.Context, model, prompt, imgB64 string) (string, error) {
			gotModel, gotPrompt, gotImage = model, prompt, imgB64
			return `{"faces":[]}`, nil
		}), cfg)
		_, err := l.DetectFaces(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, "llava", gotModel)
		assert.Equal(t, FacePrompt, gotPrompt)
		assert.NotEmpty(t, gotImage)
	})
}

func TestTestVision(t *testing.T) {
	l := NewFaceLocator(client.Func(func(ctx context.Context, model, prompt, imgB64 string) (string, error) {
		return prompt, nil
	}), DefaultConfig())
	out, err := l.TestVision(context.Background(), createTestImage(10, 10, color.White))
	require.NoError(t, err)
	assert.Equal(t, SimpleTestPrompt, out)
}
