package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/otabekmirzaev/intern-scout/internal/store"
)

var wordRE = regexp.MustCompile(`[a-z0-9][a-z0-9+.#-]{0,48}`)

// stopwords covers filler plus terms that appear in nearly every internship
// listing and would otherwise match everything.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "in": {},
	"intern": {}, "internship": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "role": {}, "software": {}, "the": {},
	"to": {}, "with": {},
}

// Tokens extracts the searchable keywords from free text. Tokens keep the
// characters that matter for tech terms (c++, c#, node.js, scikit-learn).
func Tokens(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 2 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func profileKeywords(profile store.Profile) map[string]struct{} {
	var parts []string
	if profile.MajorOrProgram != "" {
		parts = append(parts, profile.MajorOrProgram)
	}
	if profile.CareerInterests != "" {
		parts = append(parts, profile.CareerInterests)
	}
	for _, s := range profile.Skills {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Tokens(strings.Join(parts, " "))
}

// ProfileSummary renders a profile as the one-line context string sent to
// the model and returned when no AI summary is available.
func ProfileSummary(profile store.Profile) string {
	var parts []string
	if profile.MajorOrProgram != "" {
		parts = append(parts, "Major/Program: "+profile.MajorOrProgram)
	}
	if profile.CareerInterests != "" {
		parts = append(parts, "Interests: "+profile.CareerInterests)
	}
	if skills := strings.Join(profile.Skills, ", "); skills != "" {
		parts = append(parts, "Skills: "+skills)
	}
	if profile.GraduationYear != 0 {
		parts = append(parts, fmt.Sprintf("Graduation year: %d", profile.GraduationYear))
	}
	if len(parts) == 0 {
		return "No profile info provided."
	}
	return strings.Join(parts, " | ")
}

// sortedIntersection returns the tokens present in both sets, sorted so the
// matched-keyword output is stable.
func sortedIntersection(tokens, keywords map[string]struct{}) []string {
	var hits []string
	for t := range tokens {
		if _, ok := keywords[t]; ok {
			hits = append(hits, t)
		}
	}
	sort.Strings(hits)
	return hits
}
