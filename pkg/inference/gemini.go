package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type GeminiInferencer struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiInferencer creates an inferencer backed by the Gemini API. Requests reuse the
// OpenAI parameter struct so callers stay provider-agnostic.
func NewGeminiInferencer(apiKey string, model string) (*GeminiInferencer, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiInferencer{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (o *GeminiInferencer) Model() string { return o.model }

// Infer sends text to Gemini and returns the output. JSON response modes on params map
// to Gemini's JSON MIME type.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	temperature := float32(cmp.Or(params.Temperature.Value, DefaultTemperature))
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, DefaultMaxTokens)),
		Temperature:       &temperature,
	}
	if params.ResponseFormat.OfJSONObject != nil || params.ResponseFormat.OfJSONSchema != nil {
		config.ResponseMIMEType = "application/json"
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, o.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
		}
		return "", fmt.Errorf("gemini inference error: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
