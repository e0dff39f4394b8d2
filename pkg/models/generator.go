package models

import "context"

// ImageGenerator is the interface every image generation backend must
// implement. Never call a specific backend directly — always inject this
// interface.
type ImageGenerator interface {
	// Generate submits the source image and prompt and returns the URL of the
	// generated image on the provider's side.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Name returns the provider identifier (e.g., "runware", "mock").
	Name() string
}

// GenerationRequest is the input to one image generation call.
type GenerationRequest struct {
	Image  []byte // source image bytes
	Prompt string
	JobID  string // tags the upstream task for traceability
}
