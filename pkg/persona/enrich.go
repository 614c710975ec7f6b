package persona

import (
	"math/rand/v2"
	"strings"

	"personas/pkg/corpus"
	"personas/pkg/schema"
	"personas/pkg/utils"
)

// Enrich merges one randomly chosen reference entry into base. base is returned as is
// when there are no candidates, and its slices are never modified.
func Enrich(base schema.Persona, candidates []corpus.Entry, r *rand.Rand) schema.Persona {
	if len(candidates) == 0 {
		return base
	}
	ref := candidates[r.IntN(len(candidates))]

	out := base
	out.Interests = copyOf(ref.Interests)
	out.Skills = copyOf(ref.Skills)
	out.Hobbies = copyOf(ref.Hobbies)
	out.PersonalityTraits = copyOf(ref.PersonalityTraits)
	out.PainPoints = copyOf(ref.PainPoints)
	out.Goals = utils.Dedupe(base.Goals, ref.Goals)
	out.Frustrations = utils.Dedupe(base.Frustrations, ref.Frustrations)

	if traits := ref.PersonalityTraits; len(traits) > 0 {
		clause := ", who is " + strings.ToLower(traits[0])
		if len(traits) > 1 {
			clause += " and " + strings.ToLower(traits[1])
		}
		out.Description = strings.TrimRight(base.Description, ".") + clause + "."
	}
	return out
}

func copyOf(s []string) []string {
	return append(make([]string, 0, len(s)), s...)
}
