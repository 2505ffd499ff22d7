package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/providers"
	"google.golang.org/genai"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestBuildContents(t *testing.T) {
	img := images.FromBytes([]byte("\x89PNG\r\n\x1a\nrest"), "image/png")
	contents, err := buildContents([]providers.Part{
		providers.ImagePart(img),
		providers.TextPart("make it red"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(contents))
	}
	if contents[0].Role != string(genai.RoleUser) {
		t.Errorf("Expected user role, got %s", contents[0].Role)
	}

	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/png" {
		t.Errorf("Expected first part to be inline PNG, got %+v", parts[0])
	}
	if string(parts[0].InlineData.Data) != "\x89PNG\r\n\x1a\nrest" {
		t.Errorf("Expected decoded image bytes, got %q", parts[0].InlineData.Data)
	}
	if parts[1].Text != "make it red" {
		t.Errorf("Expected prompt text, got %q", parts[1].Text)
	}
}

func TestBuildContentsRejectsBadImage(t *testing.T) {
	_, err := buildContents([]providers.Part{providers.ImagePart(images.Asset{Data: "%%%", MIMEType: "image/png"})})
	if err == nil {
		t.Error("Expected error for undecodable image")
	}
}

func TestBuildConfig(t *testing.T) {
	if cfg := buildConfig(providers.Request{}); cfg != nil {
		t.Errorf("Expected nil config for plain request, got %+v", cfg)
	}

	cfg := buildConfig(providers.Request{Modalities: []providers.Modality{providers.ModalityImage, providers.ModalityText}})
	if cfg == nil {
		t.Fatal("Expected config")
	}
	if len(cfg.ResponseModalities) != 2 || cfg.ResponseModalities[0] != "IMAGE" || cfg.ResponseModalities[1] != "TEXT" {
		t.Errorf("Unexpected modalities: %v", cfg.ResponseModalities)
	}
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "thinking", Thought: true},
						{Text: "Here you go"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("one")}},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: nil}},
						{Text: ""},
						{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("two")}},
					},
				},
			},
			{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "second candidate"}}},
			},
		},
	}

	out := convertResponse(resp)
	if len(out.Parts) != 3 {
		t.Fatalf("Expected 3 parts, got %d", len(out.Parts))
	}
	if out.Parts[0].Text != "Here you go" {
		t.Errorf("Expected text part first, got %+v", out.Parts[0])
	}
	if out.Parts[1].Image == nil || out.Parts[1].Image.MIMEType != "image/png" {
		t.Errorf("Expected PNG image second, got %+v", out.Parts[1])
	}
	if out.Parts[2].Image == nil || out.Parts[2].Image.MIMEType != "image/jpeg" {
		t.Errorf("Expected JPEG image third, got %+v", out.Parts[2])
	}
}

func TestConvertResponseEmpty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil response", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "nil content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := convertResponse(tt.resp); len(out.Parts) != 0 {
				t.Errorf("Expected no parts, got %d", len(out.Parts))
			}
		})
	}
}
