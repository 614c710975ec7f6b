package inference

import (
	"cmp"
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK.
type OpenAIInferencer struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIInferencer creates an inferencer for the hosted OpenAI API. Retries are
// disabled so a failed call surfaces immediately.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &OpenAIInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	o.client = &client
}

func (o *OpenAIInferencer) Model() string { return o.model }

// Infer sends text to the OpenAI chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = messages(system, user)
	p.MaxCompletionTokens = openai.Int(cmp.Or(p.MaxCompletionTokens.Value, DefaultMaxTokens))
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, DefaultTemperature))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", upstream("openai", err)
	}
	return firstChoice(resp)
}
