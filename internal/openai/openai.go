package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/idealab/internal/providers"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// OpenAI is a provider for OpenAI vision chat models
type OpenAI struct {
	client openai.Client
}

// New returns a new OpenAI provider. An empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

// GenerateContent sends the parts as one user message and returns the reply as
// a single text part.
func (o *OpenAI) GenerateContent(ctx context.Context, req providers.Request) (*providers.Response, error) {
	if req.WantsImage() {
		return nil, providers.ErrImageOutputUnsupported
	}

	content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Image != nil {
			content = append(content, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: p.Image.DataURL(),
			}))
			continue
		}
		content = append(content, openai.TextContentPart(p.Text))
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(content)},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from OpenAI")
	}

	out := &providers.Response{}
	if text := completion.Choices[0].Message.Content; text != "" {
		out.Parts = append(out.Parts, providers.TextPart(text))
	}
	return out, nil
}
