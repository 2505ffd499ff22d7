package providers

import (
	"context"
	"errors"

	"github.com/lehigh-university-libraries/idealab/internal/images"
)

// Modality is an output kind the remote model is asked to produce
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// ErrImageOutputUnsupported is returned by providers that can only produce text
var ErrImageOutputUnsupported = errors.New("provider cannot return images")

// Part is one ordered piece of request or response content. Exactly one of
// Text and Image is set.
type Part struct {
	Text  string
	Image *images.Asset
}

// TextPart builds a text content part
func TextPart(s string) Part {
	return Part{Text: s}
}

// ImagePart builds an inline image content part
func ImagePart(a images.Asset) Part {
	return Part{Image: &a}
}

// Request represents a single generation call
type Request struct {
	Model       string
	Parts       []Part
	Modalities  []Modality
	Temperature *float32
}

// WantsImage reports whether image output was requested
func (r Request) WantsImage() bool {
	for _, m := range r.Modalities {
		if m == ModalityImage {
			return true
		}
	}
	return false
}

// Response holds the ordered parts of the first candidate
type Response struct {
	Parts []Part
}

// Provider defines the interface for a generation backend
type Provider interface {
	GenerateContent(ctx context.Context, req Request) (*Response, error)
}
