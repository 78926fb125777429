// Package gemini queries Google Gemini vision models through the Gen AI SDK.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// APIKeyEnv is read when no API key is passed explicitly.
const APIKeyEnv = "GOOGLE_API_KEY"

// Client wraps a genai client
type Client struct {
	client      *genai.Client
	Temperature float32
}

// NewClient creates a Gemini API client. An empty apiKey falls back to the
// GOOGLE_API_KEY environment variable.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required", APIKeyEnv)
	}
	return NewClientWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewClientWithConfig creates a client from an explicit SDK configuration
func NewClientWithConfig(ctx context.Context, cfg *genai.ClientConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	return &Client{client: client, Temperature: 0.2}, nil
}

// Query sends the prompt and a JPEG image and returns the answer text
func (c *Client) Query(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if imgB64 != "" {
		data, err := base64.StdEncoding.DecodeString(imgB64)
		if err != nil {
			return "", fmt.Errorf("failed to decode base64 image: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(c.Temperature)}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}
