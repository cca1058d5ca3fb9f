package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otabekmirzaev/intern-scout/internal/store"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits",
			text: "Backend Engineering with Go",
			want: []string{"backend", "engineering", "go"},
		},
		{
			name: "keeps tech punctuation",
			text: "C++ and C# plus Node.js, scikit-learn",
			want: []string{"c++", "c#", "node.js", "plus", "scikit-learn"},
		},
		{
			name: "drops stopwords and single chars",
			text: "a Software Intern role at the internship",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokens(tc.text)
			assert.Len(t, got, len(tc.want))
			for _, w := range tc.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestProfileSummary(t *testing.T) {
	full := store.Profile{
		MajorOrProgram:  "Computer Science",
		CareerInterests: "backend, distributed systems",
		Skills:          []string{"Go", "SQL"},
		GraduationYear:  2027,
	}
	assert.Equal(t,
		"Major/Program: Computer Science | Interests: backend, distributed systems | Skills: Go, SQL | Graduation year: 2027",
		ProfileSummary(full))

	partial := store.Profile{Skills: []string{"Python"}}
	assert.Equal(t, "Skills: Python", ProfileSummary(partial))

	assert.Equal(t, "No profile info provided.", ProfileSummary(store.Profile{}))
}

func TestProfileKeywords(t *testing.T) {
	profile := store.Profile{
		MajorOrProgram:  "Data Science",
		CareerInterests: "machine learning",
		Skills:          []string{"Python", ""},
	}
	got := profileKeywords(profile)
	for _, w := range []string{"data", "science", "machine", "learning", "python"} {
		assert.Contains(t, got, w)
	}
	assert.NotContains(t, got, "")
}

func TestSortedIntersection(t *testing.T) {
	tokens := map[string]struct{}{"go": {}, "sql": {}, "react": {}}
	keywords := map[string]struct{}{"sql": {}, "go": {}, "rust": {}}
	assert.Equal(t, []string{"go", "sql"}, sortedIntersection(tokens, keywords))

	assert.Empty(t, sortedIntersection(tokens, map[string]struct{}{}))
}
