package persona

import (
	"fmt"
	"strings"
)

type kind string

const (
	kindString kind = "string"
	kindNumber kind = "number"
	kindObject kind = "object"
	kindList   kind = "array"
)

type field struct {
	name string
	kind kind
}

var profileFields = []field{
	{"name", kindString},
	{"avatar", kindString},
	{"type", kindString},
	{"description", kindString},
	{"demographics", kindObject},
	{"goals", kindList},
	{"frustrations", kindList},
	{"behaviors", kindList},
	{"motivations", kindList},
	{"techProficiency", kindString},
	{"preferredChannels", kindList},
}

var demographicFields = []field{
	{"age", kindNumber},
	{"gender", kindString},
	{"occupation", kindString},
	{"education", kindString},
	{"location", kindString},
}

// ValidationError lists every problem found in a candidate persona.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "persona validation failed: " + strings.Join(e.Problems, "; ")
}

// Validate checks a decoded JSON object against the persona contract. Top-level and
// demographic problems are collected together; a null value counts as missing.
func Validate(obj map[string]any) error {
	var problems []string
	problems = append(problems, check(obj, profileFields, "")...)

	if demographics, ok := obj["demographics"].(map[string]any); ok {
		problems = append(problems, check(demographics, demographicFields, "demographics.")...)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func check(obj map[string]any, fields []field, prefix string) []string {
	var problems []string
	for _, f := range fields {
		name := prefix + f.name
		v, ok := obj[f.name]
		if !ok || v == nil {
			problems = append(problems, "missing field: "+name)
			continue
		}

		if got := jsonType(v); got != f.kind {
			problems = append(problems, fmt.Sprintf("invalid type for %s: expected %s, got %s", name, f.kind, got))
			continue
		}

		if f.kind == kindList {
			for i, item := range v.([]any) {
				if got := jsonType(item); got != kindString {
					problems = append(problems, fmt.Sprintf("%s[%d] must be a string, got %s", name, i, got))
				}
			}
		}
	}
	return problems
}

func jsonType(v any) kind {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return kindString
	case float64, int, int64:
		return kindNumber
	case bool:
		return "boolean"
	case map[string]any:
		return kindObject
	case []any:
		return kindList
	default:
		return kind(fmt.Sprintf("%T", v))
	}
}
