package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/idealab/internal/providers"
)

const defaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama vision models
type Ollama struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a new Ollama provider. baseURL falls back to OLLAMA_URL,
// OLLAMA_HOST and finally the local default.
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_URL")
	}
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Ollama{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// GenerateContent joins the text parts into a prompt, passes the image parts
// as base64 images and returns the model output as a single text part.
func (o *Ollama) GenerateContent(ctx context.Context, req providers.Request) (*providers.Response, error) {
	if req.WantsImage() {
		return nil, providers.ErrImageOutputUnsupported
	}

	var prompt []string
	imgs := []string{}
	for _, p := range req.Parts {
		if p.Image != nil {
			imgs = append(imgs, p.Image.Data)
			continue
		}
		prompt = append(prompt, p.Text)
	}

	body := map[string]interface{}{
		"model":  req.Model,
		"prompt": strings.Join(prompt, "\n\n"),
		"images": imgs,
		"stream": false,
	}
	if req.Temperature != nil {
		body["options"] = map[string]interface{}{
			"temperature": *req.Temperature,
		}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	out := &providers.Response{}
	if response.Response != "" {
		out.Parts = append(out.Parts, providers.TextPart(response.Response))
	}
	return out, nil
}
