package inference

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
)

// Inferencer sends one system+user message pair to a chat completion endpoint and
// returns the first choice's text.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}

// ErrEmptyCompletion is returned when the endpoint answers without any content.
var ErrEmptyCompletion = errors.New("empty completion content")

// UpstreamError is a non-success HTTP status from an LLM endpoint.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// upstream turns SDK errors into UpstreamError when the endpoint answered with a status.
func upstream(provider string, err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s inference error: %w", provider, err)
	}

	body := apiErr.RawJSON()
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if b, readErr := io.ReadAll(apiErr.Response.Body); readErr == nil && len(b) > 0 {
			body = string(b)
		}
	}
	return &UpstreamError{
		Provider:   provider,
		StatusCode: apiErr.StatusCode,
		Body:       body,
		Err:        err,
	}
}

func messages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.Opt[string]{Value: user},
				},
			},
		},
	}
}

func firstChoice(resp *openai.ChatCompletion) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
