package core

import (
	"sort"
	"strings"
	"time"

	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

// ScoredJob pairs a listing with its heuristic score and the profile
// keywords that produced it.
type ScoredJob struct {
	Job             feed.Job `json:"job"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// RecencyBonus rewards fresh postings. Decays linearly to zero at 45 days;
// a missing date contributes nothing.
func RecencyBonus(datePosted int64, now time.Time) float64 {
	if datePosted <= 0 {
		return 0.0
	}
	days := now.Sub(time.Unix(datePosted, 0)).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	bonus := 1.0 - days/45.0
	if bonus < 0 {
		return 0.0
	}
	return bonus
}

// ScoreJobsForUser ranks listings against a profile and keeps the top limit.
// Title keyword hits weigh 3x, category hits 2x, plus a recency bonus and
// small nudges for co-op and intern titles. The sort is stable so equal
// scores keep feed order.
func ScoreJobsForUser(jobs []feed.Job, profile store.Profile, limit int) []ScoredJob {
	if limit < 1 {
		return nil
	}

	keywords := profileKeywords(profile)
	now := time.Now().UTC()

	scored := make([]ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		titleHits := sortedIntersection(Tokens(job.Title), keywords)
		categoryHits := sortedIntersection(Tokens(job.Category), keywords)

		score := 3.0*float64(len(titleHits)) + 2.0*float64(len(categoryHits))
		score += RecencyBonus(job.DatePosted, now)

		title := strings.ToLower(job.Title)
		if strings.Contains(title, "co-op") || strings.Contains(title, "coop") {
			score += 0.15
		}
		if strings.Contains(title, "intern") {
			score += 0.1
		}

		matched := append(titleHits, categoryHits...)
		if len(matched) > 8 {
			matched = matched[:8]
		}

		scored = append(scored, ScoredJob{Job: job, Score: score, MatchedKeywords: matched})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
