package studio

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/idealab/internal/config"
	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/providers"
)

// DefaultEditText is reported when an edit returns an image without commentary
const DefaultEditText = "No text response from AI."

var imageAndText = []providers.Modality{providers.ModalityImage, providers.ModalityText}

// Client wraps the three product-design operations around the remote models
type Client struct {
	describer providers.Provider
	imager    providers.Provider
	models    config.Models
	prompts   config.Prompts
}

// EditResult is the outcome of a chat edit
type EditResult struct {
	Image images.Asset
	Text  string
}

// NewClient returns a client that sends description requests to describer and
// image-producing requests to imager. Empty models or prompts use the defaults.
func NewClient(describer, imager providers.Provider, models config.Models, prompts config.Prompts) *Client {
	if models.Description == "" {
		models.Description = config.DefaultDescriptionModel
	}
	if models.Image == "" {
		models.Image = config.DefaultImageModel
	}
	if prompts.Description == "" {
		prompts.Description = config.DefaultDescriptionPrompt
	}
	if prompts.Sketch == "" {
		prompts.Sketch = config.DefaultSketchPrompt
	}
	return &Client{
		describer: describer,
		imager:    imager,
		models:    models,
		prompts:   prompts,
	}
}

// Describe writes a marketing description of the product in img
func (c *Client) Describe(ctx context.Context, img images.Asset) (string, error) {
	req := providers.Request{
		Model: c.models.Description,
		Parts: []providers.Part{
			providers.ImagePart(img),
			providers.TextPart(c.prompts.Description),
		},
		Temperature: c.models.Temperature,
	}

	resp, err := c.generate(ctx, OpDescribe, c.describer, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range resp.Parts {
		if p.Image == nil {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", c.fail(OpDescribe, req.Model, ErrNoText)
	}

	return sb.String(), nil
}

// EditImage applies prompt to main, using aux as reference images. The prompt
// is optional as long as the caller supplies something to act on.
func (c *Client) EditImage(ctx context.Context, main images.Asset, aux []images.Asset, prompt string) (*EditResult, error) {
	parts := make([]providers.Part, 0, len(aux)+2)
	parts = append(parts, providers.ImagePart(main))
	for _, a := range aux {
		parts = append(parts, providers.ImagePart(a))
	}
	if prompt != "" {
		parts = append(parts, providers.TextPart(prompt))
	}

	req := providers.Request{
		Model:       c.models.Image,
		Parts:       parts,
		Modalities:  imageAndText,
		Temperature: c.models.Temperature,
	}

	resp, err := c.generate(ctx, OpEdit, c.imager, req)
	if err != nil {
		return nil, err
	}

	img, text := lastImageAndText(resp.Parts)
	if img == nil {
		return nil, c.fail(OpEdit, req.Model, ErrNoImageReturned)
	}
	if text == "" {
		text = DefaultEditText
	}

	return &EditResult{Image: *img, Text: text}, nil
}

// Sketch produces a technical line drawing of the product in img
func (c *Client) Sketch(ctx context.Context, img images.Asset) (images.Asset, error) {
	req := providers.Request{
		Model: c.models.Image,
		Parts: []providers.Part{
			providers.ImagePart(img),
			providers.TextPart(c.prompts.Sketch),
		},
		Modalities:  imageAndText,
		Temperature: c.models.Temperature,
	}

	resp, err := c.generate(ctx, OpSketch, c.imager, req)
	if err != nil {
		return images.Asset{}, err
	}

	sketch := firstImage(resp.Parts)
	if sketch == nil {
		return images.Asset{}, c.fail(OpSketch, req.Model, ErrNoSketchReturned)
	}

	return *sketch, nil
}

func (c *Client) generate(ctx context.Context, op string, p providers.Provider, req providers.Request) (*providers.Response, error) {
	start := time.Now()
	slog.Debug("Sending generation request", "op", op, "model", req.Model, "parts", len(req.Parts))

	resp, err := p.GenerateContent(ctx, req)
	if err != nil {
		return nil, c.fail(op, req.Model, err)
	}
	if resp == nil {
		resp = &providers.Response{}
	}

	slog.Info("Generation complete", "op", op, "model", req.Model, "response_parts", len(resp.Parts), "duration", time.Since(start))
	return resp, nil
}

func (c *Client) fail(op, model string, err error) error {
	slog.Error("Generation failed", "op", op, "model", model, "error", err)
	return newGenerationError(op, err)
}

// lastImageAndText scans the parts in order and keeps the last image and the
// last text seen. Responses may interleave commentary and images.
func lastImageAndText(parts []providers.Part) (*images.Asset, string) {
	var img *images.Asset
	var text string
	for _, p := range parts {
		switch {
		case p.Image != nil:
			img = p.Image
		case p.Text != "":
			text = p.Text
		}
	}
	return img, text
}

// firstImage returns the first image part.
// Unlike edits, sketches keep the earliest image in the response.
func firstImage(parts []providers.Part) *images.Asset {
	for _, p := range parts {
		if p.Image != nil {
			return p.Image
		}
	}
	return nil
}
