package textgen

import (
	"context"
	"errors"
)

// Result is the outcome of one generation call. Exactly one of Text or
// Blocked is meaningful; an empty Text with Blocked false means the
// model produced no usable output.
type Result struct {
	Text        string
	Blocked     bool
	BlockReason string
}

// Options are per-call generation parameters. A nil Options uses the
// provider defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ErrImagesUnsupported is returned by GenerateImage on providers that
// only accept text prompts.
var ErrImagesUnsupported = errors.New("textgen: provider does not accept image input")

// Generator is the narrow interface handlers and services depend on,
// so tests can inject a stub.
type Generator interface {
	// Generate sends a text prompt and returns the model's reply.
	Generate(ctx context.Context, prompt string, opts *Options) (*Result, error)

	// GenerateImage sends a prompt together with an inline image.
	GenerateImage(ctx context.Context, prompt string, image []byte, mimeType string, opts *Options) (*Result, error)

	// SupportsImages reports whether GenerateImage is usable.
	SupportsImages() bool
}
