package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClientWithConfig(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return c
}

func TestQuery(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-flash:generateContent"), r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"faces\":[]}"}]}}]}`)
	})

	out, err := c.Query(context.Background(), "gemini-2.5-flash", "find faces", "aGk=")
	require.NoError(t, err)
	assert.Equal(t, `{"faces":[]}`, out)
	assert.Contains(t, body, "find faces")
	assert.Contains(t, body, "image/jpeg")
}

func TestQueryEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})
	_, err := c.Query(context.Background(), "m", "p", "")
	assert.ErrorContains(t, err, "empty response")
}

func TestNewClientNeedsKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := NewClient(context.Background(), "")
	assert.ErrorContains(t, err, APIKeyEnv)
}
