package core

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

func TestRecencyBonus(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	day := int64(24 * 60 * 60)

	tests := []struct {
		name       string
		datePosted int64
		want       float64
	}{
		{name: "posted right now", datePosted: now.Unix(), want: 1.0},
		{name: "half decayed", datePosted: now.Unix() - 22*day - day/2, want: 0.5},
		{name: "fully decayed", datePosted: now.Unix() - 45*day, want: 0.0},
		{name: "older than window", datePosted: now.Unix() - 90*day, want: 0.0},
		{name: "future date clamps", datePosted: now.Unix() + 10*day, want: 1.0},
		{name: "missing date", datePosted: 0, want: 0.0},
		{name: "negative date", datePosted: -5, want: 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RecencyBonus(tc.datePosted, now), 1e-9)
		})
	}
}

func TestScoreJobsForUser(t *testing.T) {
	profile := store.Profile{CareerInterests: "backend", Skills: []string{"golang"}}
	jobs := []feed.Job{
		{UID: "a", Title: "Backend Golang Intern"},
		{UID: "b", Title: "Frontend Intern", Category: "Backend"},
		{UID: "c", Title: "Data Analyst"},
		{UID: "d", Title: "Golang Co-op"},
	}

	scored := ScoreJobsForUser(jobs, profile, 3)
	require.Len(t, scored, 3)

	// Two title hits at 3x plus the intern nudge.
	assert.Equal(t, "a", scored[0].Job.UID)
	assert.InDelta(t, 6.1, scored[0].Score, 1e-9)
	assert.Equal(t, []string{"backend", "golang"}, scored[0].MatchedKeywords)

	// One title hit plus the co-op nudge.
	assert.Equal(t, "d", scored[1].Job.UID)
	assert.InDelta(t, 3.15, scored[1].Score, 1e-9)

	// One category hit at 2x plus the intern nudge.
	assert.Equal(t, "b", scored[2].Job.UID)
	assert.InDelta(t, 2.1, scored[2].Score, 1e-9)
}

func TestScoreJobsForUserRecencyBreaksEqualMatches(t *testing.T) {
	now := time.Now().UTC()
	jobs := []feed.Job{
		{UID: "old", Title: "Platform Engineer", DatePosted: now.Add(-100 * 24 * time.Hour).Unix()},
		{UID: "fresh", Title: "Platform Engineer", DatePosted: now.Add(-1 * time.Hour).Unix()},
	}

	scored := ScoreJobsForUser(jobs, store.Profile{}, 10)
	require.Len(t, scored, 2)
	assert.Equal(t, "fresh", scored[0].Job.UID)
	assert.Equal(t, "old", scored[1].Job.UID)
}

func TestScoreJobsForUserStableOnTies(t *testing.T) {
	jobs := []feed.Job{
		{UID: "x", Title: "Unrelated One"},
		{UID: "y", Title: "Unrelated Two"},
	}

	scored := ScoreJobsForUser(jobs, store.Profile{}, 10)
	require.Len(t, scored, 2)
	assert.Equal(t, "x", scored[0].Job.UID)
	assert.Equal(t, "y", scored[1].Job.UID)
}

func TestScoreJobsForUserCapsMatchedKeywords(t *testing.T) {
	var skills []string
	var title []string
	for i := 0; i < 10; i++ {
		kw := fmt.Sprintf("skill%02d", i)
		skills = append(skills, kw)
		title = append(title, kw)
	}

	scored := ScoreJobsForUser(
		[]feed.Job{{UID: "a", Title: strings.Join(title, " ")}},
		store.Profile{Skills: skills},
		10,
	)
	require.Len(t, scored, 1)
	assert.Len(t, scored[0].MatchedKeywords, 8)
}

func TestScoreJobsForUserLimit(t *testing.T) {
	jobs := []feed.Job{{UID: "a"}, {UID: "b"}, {UID: "c"}}

	assert.Nil(t, ScoreJobsForUser(jobs, store.Profile{}, 0))
	assert.Len(t, ScoreJobsForUser(jobs, store.Profile{}, 2), 2)
	assert.Len(t, ScoreJobsForUser(jobs, store.Profile{}, 50), 3)
}
