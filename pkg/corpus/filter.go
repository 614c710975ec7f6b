package corpus

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"personas/pkg/utils"
)

// MaxSelected caps how many reference entries a filter returns.
const MaxSelected = 5

var techKeywords = []string{"tech", "software", "developer", "programming", "code"}

// Filter picks up to MaxSelected reference entries for a generation request.
//
// In random mode it samples without replacement. In potential mode it scores each entry
// against the dot-separated tokens of url and keeps the best non-zero scores, falling
// back to a random sample when nothing scores.
func Filter(entries []Entry, url string, mode Mode, r *rand.Rand) []Entry {
	if len(entries) == 0 {
		return []Entry{}
	}
	if mode == ModeRandom {
		return Sample(entries, MaxSelected, r)
	}

	keywords := Keywords(url)
	techSite := utils.StringContains(url, false, techKeywords...)

	type scored struct {
		entry Entry
		score int
	}
	var relevant []scored
	for _, e := range entries {
		if s := Score(e, keywords, techSite); s > 0 {
			relevant = append(relevant, scored{e, s})
		}
	}
	if len(relevant) == 0 {
		return Sample(entries, MaxSelected, r)
	}

	slices.SortStableFunc(relevant, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]Entry, 0, min(len(relevant), MaxSelected))
	for _, s := range relevant[:min(len(relevant), MaxSelected)] {
		out = append(out, s.entry)
	}
	return out
}

// Keywords lower-cases url and splits it on dots, dropping empty tokens.
func Keywords(url string) []string {
	var out []string
	for _, k := range strings.Split(strings.ToLower(url), ".") {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Score is +1 for every interest, hobby, skill or goal that mentions a keyword, plus 2
// for high or expert tech proficiency when the site looks technical.
func Score(e Entry, keywords []string, techSite bool) int {
	score := 0
	for _, list := range [][]string{e.Interests, e.Hobbies, e.Skills, e.Goals} {
		for _, s := range list {
			if len(keywords) > 0 && utils.StringContains(s, false, keywords...) {
				score++
			}
		}
	}

	if techSite {
		switch strings.ToLower(e.TechProficiency) {
		case "high", "expert":
			score += 2
		}
	}
	return score
}

// Sample returns up to n entries chosen without replacement, in random order.
func Sample(entries []Entry, n int, r *rand.Rand) []Entry {
	n = min(n, len(entries))
	out := make([]Entry, 0, n)
	for _, i := range r.Perm(len(entries))[:n] {
		out = append(out, entries[i])
	}
	return out
}
