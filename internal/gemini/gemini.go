package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/providers"
	"google.golang.org/genai"
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// Gemini is a provider for Google Gemini
type Gemini struct {
	client *genai.Client
}

// New returns a Gemini provider authenticated with apiKey
func New(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// GenerateContent sends the request parts as a single user turn and returns the
// parts of the first candidate in order.
func (g *Gemini) GenerateContent(ctx context.Context, req providers.Request) (*providers.Response, error) {
	contents, err := buildContents(req.Parts)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return convertResponse(resp), nil
}

func buildContents(parts []providers.Part) ([]*genai.Content, error) {
	out := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		if p.Image != nil {
			data, err := p.Image.Bytes()
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: p.Image.MIMEType, Data: data}})
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return []*genai.Content{genai.NewContentFromParts(out, genai.RoleUser)}, nil
}

func buildConfig(req providers.Request) *genai.GenerateContentConfig {
	if len(req.Modalities) == 0 && req.Temperature == nil {
		return nil
	}
	config := &genai.GenerateContentConfig{Temperature: req.Temperature}
	for _, m := range req.Modalities {
		config.ResponseModalities = append(config.ResponseModalities, string(m))
	}
	return config
}

func convertResponse(resp *genai.GenerateContentResponse) *providers.Response {
	out := &providers.Response{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return out
	}

	for _, part := range candidate.Content.Parts {
		switch {
		case part == nil || part.Thought:
		case part.InlineData != nil && len(part.InlineData.Data) > 0:
			out.Parts = append(out.Parts, providers.ImagePart(images.FromBytes(part.InlineData.Data, part.InlineData.MIMEType)))
		case part.Text != "":
			out.Parts = append(out.Parts, providers.TextPart(part.Text))
		}
	}
	return out
}
