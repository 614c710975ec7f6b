package persona

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"personas/pkg/corpus"
	"personas/pkg/inference"
	"personas/pkg/schema"
	"personas/pkg/utils"
)

// Config holds the per-call model settings. Zero values fall back to the inference
// defaults.
type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int64
	StrictSchema bool
}

// Generator produces validated, enriched personas. It is not safe for concurrent use
// because it owns its random source.
type Generator struct {
	inferencer inference.Inferencer
	source     corpus.Source
	cfg        Config
	rng        *rand.Rand
}

// New returns a Generator. source may be nil to run without a reference corpus; a nil
// rng is replaced with a randomly seeded one.
func New(inferencer inference.Inferencer, source corpus.Source, cfg Config, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		inferencer: inferencer,
		source:     source,
		cfg:        cfg,
		rng:        rng,
	}
}

// Generate produces one persona for url.
func (g *Generator) Generate(ctx context.Context, url string, mode corpus.Mode) (schema.Persona, error) {
	refs := g.references(ctx, url, mode)

	var example *corpus.Entry
	if len(refs) > 0 {
		example = &refs[g.rng.IntN(len(refs))]
	}
	prompt := Prompt(url, mode, example)
	if log.GetLevel() <= log.DebugLevel {
		tokens, _ := utils.NumTokens(g.cfg.Model, prompt)
		log.Debug("built persona prompt", "mode", mode, "references", len(refs), "tokens", tokens, "prompt", prompt)
	}

	start := time.Now()
	raw, err := g.inferencer.Infer(ctx, g.params(), SystemPrompt, prompt)
	if err != nil {
		return schema.Persona{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return schema.Persona{}, inference.ErrEmptyCompletion
	}
	log.Debug("persona response", "took", time.Since(start).Round(time.Millisecond), "response", utils.LimitStr(raw, 200))

	p, err := Parse(raw)
	if err != nil {
		return schema.Persona{}, err
	}

	p = Enrich(p, refs, g.rng)
	p.ID = fmt.Sprintf("%d-%d", 1000+g.rng.IntN(9000), 1000+g.rng.IntN(9000))
	p.Status = schema.StatusIdle
	p.IsLocked = false
	p.Messages = []schema.Message{}
	return p, nil
}

// GenerateBatch produces count personas one after another. The first failure discards
// everything generated so far and is returned as a *BatchError.
func (g *Generator) GenerateBatch(ctx context.Context, url string, count int, mode corpus.Mode) ([]schema.Persona, error) {
	if count < 0 {
		return nil, fmt.Errorf("persona count must not be negative, got %d", count)
	}

	logger := log.With("run", ksuid.New().String(), "url", url, "mode", mode)
	logger.Info("generating personas", "count", count)

	personas := make([]schema.Persona, 0, count)
	for i := range count {
		p, err := g.Generate(ctx, url, mode)
		if err != nil {
			logger.Error("persona generation failed", "index", i+1, "error", err)
			return nil, &BatchError{Index: i + 1, Total: count, Err: err}
		}
		logger.Info("generated persona", "index", i+1, "id", p.ID, "name", p.Name)
		personas = append(personas, p)
	}
	return personas, nil
}

// Parse decodes model output into a validated persona. Markdown code fences around the
// JSON are tolerated.
func Parse(raw string) (schema.Persona, error) {
	cleaned := []byte(utils.CleanJSON(raw))

	var obj map[string]any
	if err := json.Unmarshal(cleaned, &obj); err != nil {
		return schema.Persona{}, &ParseError{Raw: raw, Err: err}
	}
	if obj == nil {
		return schema.Persona{}, &ParseError{Raw: raw, Err: errors.New("expected a JSON object, got null")}
	}
	if err := Validate(obj); err != nil {
		return schema.Persona{}, err
	}

	var profile schema.Profile
	if err := json.Unmarshal(cleaned, &profile); err != nil {
		return schema.Persona{}, &ParseError{Raw: raw, Err: err}
	}
	return schema.Persona{Profile: profile}, nil
}

func (g *Generator) references(ctx context.Context, url string, mode corpus.Mode) []corpus.Entry {
	var entries []corpus.Entry
	if g.source != nil {
		var err error
		entries, err = g.source.Load(ctx)
		if err != nil {
			log.Warn("reference corpus unavailable, continuing without it", "error", err)
			entries = nil
		}
	}
	return corpus.Filter(entries, url, mode, g.rng)
}

func (g *Generator) params() *openai.ChatCompletionNewParams {
	p := &openai.ChatCompletionNewParams{
		Model:               g.cfg.Model,
		Temperature:         openai.Float(cmp.Or(g.cfg.Temperature, inference.DefaultTemperature)),
		MaxCompletionTokens: openai.Int(cmp.Or(g.cfg.MaxTokens, inference.DefaultMaxTokens)),
		ResponseFormat:      schema.JSONObjectResponseFormat(),
	}
	if g.cfg.StrictSchema {
		p.ResponseFormat = schema.StructuredOutputsResponseFormat()
	}
	return p
}
