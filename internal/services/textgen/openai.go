package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient adapts the OpenAI chat completions API to Generator.
// Only the text surface is wired; selecting this provider leaves the
// image-analysis endpoint unavailable.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed generator.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *OpenAIClient) SupportsImages() bool { return false }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts *Options) (*Result, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if opts != nil {
		if opts.Temperature > 0 {
			params.Temperature = openai.Float(opts.Temperature)
		}
		if opts.MaxTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return &Result{}, nil
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return &Result{Blocked: true, BlockReason: choice.Message.Refusal}, nil
	}
	return &Result{Text: strings.TrimSpace(choice.Message.Content)}, nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string, image []byte, mimeType string, opts *Options) (*Result, error) {
	return nil, ErrImagesUnsupported
}
