package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"personas/pkg/corpus"
	"personas/pkg/inference"
)

const SystemPrompt = "You are a helpful assistant."

// Record is one line of synthesizer output.
type Record struct {
	UserPrompt      string `json:"user_prompt"`
	InputPersona    string `json:"input persona"`
	SynthesizedText string `json:"synthesized text"`
}

// Summary counts what a run processed.
type Summary struct {
	Total  int
	Failed int
}

type Synthesizer struct {
	inferencer inference.Inferencer
	template   Template
}

func New(inferencer inference.Inferencer, template Template) *Synthesizer {
	return &Synthesizer{
		inferencer: inferencer,
		template:   template,
	}
}

// Synthesize formats persona into the template and asks the model for a completion.
// The returned record is filled in even when err is not nil.
func (s *Synthesizer) Synthesize(ctx context.Context, persona string) (Record, error) {
	persona = strings.TrimSpace(persona)
	rec := Record{
		UserPrompt:   s.template.Format(persona),
		InputPersona: persona,
	}

	params := &openai.ChatCompletionNewParams{
		Temperature:         openai.Float(inference.DefaultTemperature),
		MaxCompletionTokens: openai.Int(inference.DefaultMaxTokens),
	}
	text, err := s.inferencer.Infer(ctx, params, SystemPrompt, rec.UserPrompt)
	if err != nil && !errors.Is(err, inference.ErrEmptyCompletion) {
		return rec, err
	}
	rec.SynthesizedText = text
	return rec, nil
}

// Run writes one JSON line per entry to w. A failed completion is recorded inline as
// "Error: <message>" and the run continues; only a failed write stops it.
func (s *Synthesizer) Run(ctx context.Context, entries []corpus.Entry, w io.Writer) (Summary, error) {
	logger := log.With("run", ksuid.New().String(), "template", s.template)
	logger.Info("synthesizing", "personas", len(entries))

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var sum Summary
	start := time.Now()
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec, err := s.Synthesize(ctx, e.Persona)
		if err != nil {
			sum.Failed++
			rec.SynthesizedText = "Error: " + err.Error()
			logger.Warn("synthesis failed", "index", i+1, "error", err)
		} else {
			logger.Debug("synthesized", "index", i+1, "of", len(entries))
		}

		if err := enc.Encode(rec); err != nil {
			return sum, fmt.Errorf("write record %d: %w", i+1, err)
		}
		sum.Total++
	}

	logger.Info("synthesis finished", "total", sum.Total, "failed", sum.Failed, "took", time.Since(start).Round(time.Millisecond))
	return sum, nil
}
