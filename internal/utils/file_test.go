package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a/b/shot.PNG"))
	assert.True(t, IsImageFile("x.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("noext"))
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"/tmp/landing page.png":               "landing page",
		"https://example.com/img/hero.jpg?x=1": "hero",
		"https://example.com/":                 "image",
		"weird:name.webp":                      "weird_name",
	}
	for in, want := range cases {
		assert.Equal(t, want, BaseName(in), in)
	}
}

func TestOutputFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "shot_heatmap.png"), OutputFilename("shot", "out", "", "_heatmap", "png"))
	assert.Equal(t, filepath.Join("out", "pre-v1.2.png"), OutputFilename("v1.2", "out", "pre-", "", ""))
}

func TestUniqueBaseNames(t *testing.T) {
	got := UniqueBaseNames([]string{
		"a/home.png",
		"b/home.png",
		"c/home.jpg",
		"home_2.png",
		"https://example.com/pricing.png",
		"pricing.webp",
	})
	assert.Equal(t, []string{"home", "home_2", "home_3", "home_2_2", "pricing", "pricing_2"}, got)
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"b.png", "a.jpg", "sub/c.webp", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.webp"),
	}, files)

	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))
	assert.True(t, FileExists(files[0]))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
