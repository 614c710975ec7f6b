package config

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel  = "gpt-3.5-turbo"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultSynthModel   = "openthinker"
	DefaultCorpus       = "persona.jsonl"
	DefaultSynthCorpus  = "https://huggingface.co/datasets/proj-persona/PersonaHub/resolve/main/persona.jsonl"
	DefaultSynthProfile = "ollama"
	DefaultCorpusTTL    = time.Hour
	DefaultPort         = "8080"
)

// Config is the explicit configuration handed to the generator, the synthesizer and the
// server. Nothing below main reads the environment directly.
type Config struct {
	Provider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	// StrictSchema switches persona generation from JSON-object mode to strict
	// JSON-schema structured output.
	StrictSchema bool
	// Seed fixes the random source; zero seeds from the clock.
	Seed uint64

	Corpus    string
	CorpusTTL time.Duration

	SynthProvider string
	SynthBaseURL  string
	SynthModel    string
	SynthAPIKey   string
	SynthCorpus   string

	Port     string
	LogLevel string
}

// ConfigurationError reports a missing or unusable setting, typically an API credential.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, cmp.Or(e.Reason, "is not configured"))
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup so tests never touch the real
// environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Provider:      strings.ToLower(cmp.Or(getenv("PERSONA_PROVIDER"), ProviderOpenAI)),
		OpenAIAPIKey:  getenv("OPENAI_API_KEY"),
		OpenAIModel:   cmp.Or(getenv("OPENAI_MODEL"), DefaultOpenAIModel),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY"),
		GeminiModel:   cmp.Or(getenv("GEMINI_MODEL"), DefaultGeminiModel),
		Corpus:        cmp.Or(getenv("PERSONA_CORPUS"), DefaultCorpus),
		CorpusTTL:     DefaultCorpusTTL,
		SynthProvider: strings.ToLower(cmp.Or(getenv("SYNTH_PROVIDER"), DefaultSynthProfile)),
		SynthBaseURL:  getenv("SYNTH_BASE_URL"),
		SynthModel:    getenv("SYNTH_MODEL"),
		SynthAPIKey:   getenv("SYNTH_API_KEY"),
		SynthCorpus:   cmp.Or(getenv("SYNTH_CORPUS"), DefaultSynthCorpus),
		Port:          cmp.Or(getenv("PORT"), DefaultPort),
		LogLevel:      cmp.Or(getenv("LOG_LEVEL"), "info"),
	}

	switch cfg.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return Config{}, &ConfigurationError{Key: "PERSONA_PROVIDER", Reason: fmt.Sprintf("has unknown value %q", cfg.Provider)}
	}

	if v := getenv("PERSONA_STRICT_SCHEMA"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &ConfigurationError{Key: "PERSONA_STRICT_SCHEMA", Reason: "must be a boolean"}
		}
		cfg.StrictSchema = strict
	}

	if v := getenv("PERSONA_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, &ConfigurationError{Key: "PERSONA_SEED", Reason: "must be an unsigned integer"}
		}
		cfg.Seed = seed
	}

	if v := getenv("PERSONA_CORPUS_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, &ConfigurationError{Key: "PERSONA_CORPUS_TTL", Reason: "must be a duration such as 30m"}
		}
		cfg.CorpusTTL = ttl
	}

	return cfg, nil
}

// RequireCredential checks that the selected generation provider has an API key.
func (c Config) RequireCredential() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &ConfigurationError{Key: "GEMINI_API_KEY"}
		}
	default:
		if c.OpenAIAPIKey == "" {
			return &ConfigurationError{Key: "OPENAI_API_KEY"}
		}
	}
	return nil
}

// Model is the model name of the selected generation provider.
func (c Config) Model() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

// Rand returns a new random source, seeded from Seed when it is set.
func (c Config) Rand() *rand.Rand {
	if c.Seed != 0 {
		return rand.New(rand.NewPCG(c.Seed, c.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
