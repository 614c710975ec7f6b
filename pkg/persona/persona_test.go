package persona

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personas/pkg/corpus"
	"personas/pkg/inference"
	"personas/pkg/schema"
)

const validJSON = `{
  "name": "Sarah Chen",
  "avatar": "https://images.unsplash.com/photo-1494790108377-be9c29b29330",
  "type": "Digital Native",
  "description": "Tech-savvy professional.",
  "demographics": {"age": 28, "gender": "Female", "occupation": "Product Manager", "education": "MBA", "location": "San Francisco, CA"},
  "goals": ["a", "b"],
  "frustrations": ["slow pages"],
  "behaviors": ["mobile first"],
  "motivations": ["growth"],
  "techProficiency": "High",
  "preferredChannels": ["Web"]
}`

func seeded() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

type call struct {
	params *openai.ChatCompletionNewParams
	system string
	user   string
}

// scripted answers each call with the next reply; a non-nil error wins over the text.
type scripted struct {
	replies []reply
	calls   []call
}

type reply struct {
	text string
	err  error
}

func (s *scripted) Infer(_ context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	s.calls = append(s.calls, call{params, system, user})
	r := s.replies[min(len(s.calls)-1, len(s.replies)-1)]
	return r.text, r.err
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(decode(t, validJSON)))
	})

	t.Run("reports top-level and demographic problems together", func(t *testing.T) {
		obj := decode(t, validJSON)
		delete(obj, "name")
		obj["demographics"].(map[string]any)["age"] = "twenty"

		err := Validate(obj)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{
			"missing field: name",
			"invalid type for demographics.age: expected number, got string",
		}, vErr.Problems)
		assert.Contains(t, err.Error(), "missing field: name")
		assert.Contains(t, err.Error(), "demographics.age")
	})

	t.Run("list elements must be strings", func(t *testing.T) {
		obj := decode(t, validJSON)
		obj["goals"] = []any{"ok", 3.0, true}
		obj["behaviors"] = "mobile first"

		var vErr *ValidationError
		require.ErrorAs(t, Validate(obj), &vErr)
		assert.ElementsMatch(t, []string{
			"goals[1] must be a string, got number",
			"goals[2] must be a string, got boolean",
			"invalid type for behaviors: expected array, got string",
		}, vErr.Problems)
	})

	t.Run("null counts as missing", func(t *testing.T) {
		obj := decode(t, validJSON)
		obj["techProficiency"] = nil

		var vErr *ValidationError
		require.ErrorAs(t, Validate(obj), &vErr)
		assert.Equal(t, []string{"missing field: techProficiency"}, vErr.Problems)
	})

	t.Run("demographics of the wrong type", func(t *testing.T) {
		obj := decode(t, validJSON)
		obj["demographics"] = []any{}

		var vErr *ValidationError
		require.ErrorAs(t, Validate(obj), &vErr)
		assert.Equal(t, []string{"invalid type for demographics: expected object, got array"}, vErr.Problems)
	})

	t.Run("empty object reports everything", func(t *testing.T) {
		var vErr *ValidationError
		require.ErrorAs(t, Validate(map[string]any{}), &vErr)
		assert.Len(t, vErr.Problems, len(profileFields))
	})
}

func basePersona() schema.Persona {
	return schema.Persona{Profile: schema.Profile{
		Description:  "Loves hiking.",
		Goals:        []string{"a", "b"},
		Frustrations: []string{"x"},
	}}
}

func TestEnrich(t *testing.T) {
	t.Run("merges a reference entry", func(t *testing.T) {
		base := basePersona()
		ref := corpus.Entry{
			Interests:         []string{"maps"},
			Goals:             []string{"b", "c"},
			Frustrations:      []string{"x", "y"},
			PersonalityTraits: []string{"Curious", "bold", "calm"},
		}

		got := Enrich(base, []corpus.Entry{ref}, seeded())
		assert.ElementsMatch(t, []string{"a", "b", "c"}, got.Goals)
		assert.ElementsMatch(t, []string{"x", "y"}, got.Frustrations)
		assert.Equal(t, "Loves hiking, who is curious and bold.", got.Description)
		assert.Equal(t, []string{"maps"}, got.Interests)
		assert.Equal(t, []string{"Curious", "bold", "calm"}, got.PersonalityTraits)
		assert.NotNil(t, got.Skills)
		assert.Empty(t, got.Skills)
		assert.NotNil(t, got.PainPoints)

		assert.Equal(t, []string{"a", "b"}, base.Goals)
		assert.Equal(t, "Loves hiking.", base.Description)
	})

	t.Run("single trait", func(t *testing.T) {
		got := Enrich(basePersona(), []corpus.Entry{{PersonalityTraits: []string{"Patient"}}}, seeded())
		assert.Equal(t, "Loves hiking, who is patient.", got.Description)
	})

	t.Run("no traits keeps the description", func(t *testing.T) {
		got := Enrich(basePersona(), []corpus.Entry{{Hobbies: []string{"chess"}}}, seeded())
		assert.Equal(t, "Loves hiking.", got.Description)
		assert.Equal(t, []string{"chess"}, got.Hobbies)
	})

	t.Run("no candidates", func(t *testing.T) {
		base := basePersona()
		assert.Equal(t, base, Enrich(base, nil, seeded()))
	})
}

func TestParse(t *testing.T) {
	t.Run("fenced output", func(t *testing.T) {
		p, err := Parse("```json\n" + validJSON + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "Sarah Chen", p.Name)
		assert.Equal(t, 28.0, p.Demographics.Age)
	})

	t.Run("extra fields are dropped", func(t *testing.T) {
		obj := decode(t, validJSON)
		obj["interests"] = []any{"injected"}
		obj["id"] = "model-made"
		raw, _ := json.Marshal(obj)

		p, err := Parse(string(raw))
		require.NoError(t, err)
		assert.Nil(t, p.Interests)
		assert.Empty(t, p.ID)
	})

	for name, raw := range map[string]string{
		"not json": "Sure! Here is your persona.",
		"array":    "[1, 2]",
		"null":     "null",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			var pErr *ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, raw, pErr.Raw)
		})
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	refs := corpus.Static{
		{Persona: "baker", Interests: []string{"baking"}, Skills: []string{"pastry"}, PersonalityTraits: []string{"warm"}},
	}

	t.Run("decorated persona", func(t *testing.T) {
		inf := &scripted{replies: []reply{{text: validJSON}}}
		g := New(inf, refs, Config{Model: "gpt-test"}, seeded())

		p, err := g.Generate(ctx, "baking.example.com", corpus.ModePotential)
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{3}-[1-9]\d{3}$`), p.ID)
		assert.Equal(t, schema.StatusIdle, p.Status)
		assert.False(t, p.IsLocked)
		assert.NotNil(t, p.Messages)
		assert.Empty(t, p.Messages)
		assert.Equal(t, []string{"baking"}, p.Interests)
		assert.Equal(t, "Tech-savvy professional, who is warm.", p.Description)

		require.Len(t, inf.calls, 1)
		c := inf.calls[0]
		assert.Equal(t, SystemPrompt, c.system)
		assert.Contains(t, c.user, "potential user of this website: baking.example.com")
		assert.Contains(t, c.user, "Interests: baking\nSkills: pastry\nPersonality: warm")
		assert.Equal(t, "gpt-test", c.params.Model)
		assert.Equal(t, inference.DefaultTemperature, c.params.Temperature.Value)
		assert.EqualValues(t, inference.DefaultMaxTokens, c.params.MaxCompletionTokens.Value)
		assert.NotNil(t, c.params.ResponseFormat.OfJSONObject)

		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"messages":[]`)
		assert.Contains(t, string(out), `"isLocked":false`)
	})

	t.Run("same seed same persona", func(t *testing.T) {
		a, err := New(&scripted{replies: []reply{{text: validJSON}}}, refs, Config{}, seeded()).Generate(ctx, "x.com", corpus.ModeRandom)
		require.NoError(t, err)
		b, err := New(&scripted{replies: []reply{{text: validJSON}}}, refs, Config{}, seeded()).Generate(ctx, "x.com", corpus.ModeRandom)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("random mode ignores the url", func(t *testing.T) {
		inf := &scripted{replies: []reply{{text: validJSON}}}
		_, err := New(inf, nil, Config{}, seeded()).Generate(ctx, "shop.example.com", corpus.ModeRandom)
		require.NoError(t, err)
		assert.Contains(t, inf.calls[0].user, "Create a random user persona")
		assert.NotContains(t, inf.calls[0].user, "shop.example.com")
		assert.NotContains(t, inf.calls[0].user, "Consider incorporating")
	})

	t.Run("strict schema", func(t *testing.T) {
		inf := &scripted{replies: []reply{{text: validJSON}}}
		_, err := New(inf, nil, Config{StrictSchema: true}, seeded()).Generate(ctx, "x.com", corpus.ModePotential)
		require.NoError(t, err)
		require.NotNil(t, inf.calls[0].params.ResponseFormat.OfJSONSchema)
		assert.Equal(t, "ux_persona", inf.calls[0].params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	})

	t.Run("corpus failure is not fatal", func(t *testing.T) {
		broken := corpus.SourceFunc(func(context.Context) ([]corpus.Entry, error) {
			return nil, errors.New("disk on fire")
		})
		inf := &scripted{replies: []reply{{text: validJSON}}}

		p, err := New(inf, broken, Config{}, seeded()).Generate(ctx, "x.com", corpus.ModePotential)
		require.NoError(t, err)
		assert.Nil(t, p.Interests)
		assert.Equal(t, "Tech-savvy professional.", p.Description)
		assert.NotContains(t, inf.calls[0].user, "Consider incorporating")
	})

	t.Run("empty completion", func(t *testing.T) {
		_, err := New(&scripted{replies: []reply{{text: "  \n"}}}, nil, Config{}, seeded()).Generate(ctx, "x.com", corpus.ModePotential)
		assert.ErrorIs(t, err, inference.ErrEmptyCompletion)
	})

	t.Run("upstream errors pass through", func(t *testing.T) {
		upErr := &inference.UpstreamError{Provider: "openai", StatusCode: 503, Body: "busy"}
		_, err := New(&scripted{replies: []reply{{err: upErr}}}, nil, Config{}, seeded()).Generate(ctx, "x.com", corpus.ModePotential)
		var got *inference.UpstreamError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, 503, got.StatusCode)
	})

	t.Run("validation errors are not enriched", func(t *testing.T) {
		_, err := New(&scripted{replies: []reply{{text: `{"name": "only a name"}`}}}, refs, Config{}, seeded()).Generate(ctx, "baking.com", corpus.ModePotential)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Problems, "missing field: demographics")
	})
}

func TestGenerateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed", func(t *testing.T) {
		inf := &scripted{replies: []reply{{text: validJSON}}}
		got, err := New(inf, nil, Config{}, seeded()).GenerateBatch(ctx, "x.com", 3, corpus.ModePotential)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Len(t, inf.calls, 3)
	})

	t.Run("second parse failure aborts the batch", func(t *testing.T) {
		inf := &scripted{replies: []reply{
			{text: validJSON},
			{text: "{not json"},
			{text: validJSON},
		}}

		got, err := New(inf, nil, Config{}, seeded()).GenerateBatch(ctx, "x.com", 3, corpus.ModePotential)
		assert.Empty(t, got)
		assert.Len(t, inf.calls, 2)

		var bErr *BatchError
		require.ErrorAs(t, err, &bErr)
		assert.Equal(t, 2, bErr.Index)
		assert.Equal(t, 3, bErr.Total)
		assert.Contains(t, err.Error(), "persona 2 of 3")

		var pErr *ParseError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, "{not json", pErr.Raw)
	})

	t.Run("zero count", func(t *testing.T) {
		got, err := New(&scripted{replies: []reply{{text: validJSON}}}, nil, Config{}, seeded()).GenerateBatch(ctx, "x.com", 0, corpus.ModeRandom)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := New(&scripted{}, nil, Config{}, seeded()).GenerateBatch(ctx, "x.com", -1, corpus.ModeRandom)
		assert.Error(t, err)
	})
}
