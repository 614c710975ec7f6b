package inference

import (
	"cmp"

	"personas/pkg/config"
)

// New builds the persona generation inferencer selected by cfg.Provider. A missing
// credential is a *config.ConfigurationError.
func New(cfg config.Config) (Inferencer, error) {
	if err := cfg.RequireCredential(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiInferencer(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		o := NewOpenAIInferencer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if cfg.OpenAIBaseURL != "" {
			o.ChangeBaseURL(cfg.OpenAIBaseURL)
		}
		return o, nil
	}
}

// NewSynth builds the inferencer for the batch synthesizer. SYNTH_BASE_URL and
// SYNTH_MODEL override the preset named by cfg.SynthProvider.
func NewSynth(cfg config.Config) (*CompatibleInferencer, error) {
	preset, err := LookupPreset(cfg.SynthProvider)
	if err != nil && cfg.SynthBaseURL == "" {
		return nil, &config.ConfigurationError{Key: "SYNTH_PROVIDER", Reason: err.Error()}
	}

	baseURL := cmp.Or(cfg.SynthBaseURL, preset.BaseURL)
	model := cmp.Or(cfg.SynthModel, preset.Model, config.DefaultSynthModel)
	return NewCompatibleInferencer(cmp.Or(cfg.SynthProvider, "compatible"), baseURL, cfg.SynthAPIKey, model), nil
}
