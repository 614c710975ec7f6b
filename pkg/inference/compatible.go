package inference

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// Preset is a known OpenAI-compatible endpoint.
type Preset struct {
	BaseURL string
	Model   string
}

var Presets = map[string]Preset{
	"ollama":   {BaseURL: "https://ollama.lg.media/v1", Model: "openthinker"},
	"local":    {BaseURL: "http://localhost:1234/v1"},
	"grok":     {BaseURL: "https://api.x.ai/v1", Model: "grok-4-fast-reasoning"},
	"kimi":     {BaseURL: "https://api.kimi.com/coding/v1", Model: "kimi-for-coding"},
	"moonshot": {BaseURL: "https://api.moonshot.ai/v1", Model: "kimi-k2-5"},
}

// LookupPreset resolves a preset by name, case-insensitively.
func LookupPreset(name string) (Preset, error) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown endpoint preset %q (choose from %s)", name, strings.Join(slices.Sorted(maps.Keys(Presets)), ", "))
	}
	return p, nil
}

// CompatibleInferencer talks to a self-hosted or third-party endpoint that speaks the
// OpenAI chat completion protocol, such as Ollama.
type CompatibleInferencer struct {
	client  *openai.Client
	name    string
	baseURL string
	apiKey  string
	model   string
}

// NewCompatibleInferencer creates an inferencer for baseURL. name only labels errors.
func NewCompatibleInferencer(name, baseURL, apiKey, model string) *CompatibleInferencer {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &CompatibleInferencer{
		client:  &client,
		name:    cmp.Or(name, "compatible"),
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (o *CompatibleInferencer) BaseURL() string { return o.baseURL }

func (o *CompatibleInferencer) Model() string { return o.model }

// Infer sends text to the compatible chat completion endpoint and returns the output.
// Self-hosted servers generally honour max_tokens rather than max_completion_tokens.
func (o *CompatibleInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = messages(system, user)
	p.MaxTokens = openai.Int(cmp.Or(p.MaxTokens.Value, p.MaxCompletionTokens.Value, DefaultMaxTokens))
	p.MaxCompletionTokens = param.Opt[int64]{}
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, DefaultTemperature))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", upstream(o.name, err)
	}
	return firstChoice(resp)
}
