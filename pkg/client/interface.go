// Package client defines the interface shared by the vision-model backends.
package client

import "context"

// VisionClient sends one prompt plus a base64-encoded image to a vision
// model and returns the model's raw text answer.
type VisionClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
}

// Func adapts a plain function to VisionClient.
type Func func(ctx context.Context, model, prompt, imgB64 string) (string, error)

// Query calls f.
func (f Func) Query(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return f(ctx, model, prompt, imgB64)
}
