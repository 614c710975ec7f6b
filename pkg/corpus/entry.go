package corpus

import (
	"context"
	"slices"
	"strings"
)

// Entry is one reference persona. Every field is optional; entries are only ever used
// as donors and are never validated against the persona schema.
type Entry struct {
	Persona           string   `json:"persona,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	Hobbies           []string `json:"hobbies,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Goals             []string `json:"goals,omitempty"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	PainPoints        []string `json:"pain_points,omitempty"`
	Frustrations      []string `json:"frustrations,omitempty"`
	TechProficiency   string   `json:"techProficiency,omitempty"`
}

// Mode selects how reference entries are picked for a generation request.
type Mode string

const (
	ModeRandom    Mode = "random"
	ModePotential Mode = "potential"
)

// ParseMode maps anything other than "random" to ModePotential.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeRandom)) {
		return ModeRandom
	}
	return ModePotential
}

// Source yields the reference corpus.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Load(ctx context.Context) ([]Entry, error) { return f(ctx) }

// Static is an in-memory corpus.
type Static []Entry

func (s Static) Load(context.Context) ([]Entry, error) { return slices.Clone(s), nil }
