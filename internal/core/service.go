package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/observability"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

// ErrInvalidArgument marks caller mistakes that should surface as a 400.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	defaultLimit         = 10
	defaultCandidatePool = 40
	maxResumeContext     = 12000
)

// JobSource supplies the visible listings. Satisfied by feed.Loader.
type JobSource interface {
	Visible(limit int) []feed.Job
}

type GenerateRequest struct {
	UserEmail     string
	Limit         int
	CandidatePool int
	UseAI         bool
	ResumeID      string
}

type RecommendedJob struct {
	feed.Job
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

type GenerateResult struct {
	AIUsed            bool             `json:"ai_used"`
	CareerSummary     string           `json:"career_summary,omitempty"`
	RecommendedRoles  []string         `json:"recommended_roles"`
	RecommendedSkills []string         `json:"recommended_skills"`
	Jobs              []RecommendedJob `json:"jobs"`
}

// RecommendationService glues the feed, the profile store, and the model
// pipeline into one operation.
type RecommendationService struct {
	jobs        JobSource
	store       store.Store
	recommender *Recommender
	log         *zap.Logger
}

func NewRecommendationService(jobs JobSource, st store.Store, client ai.Client, log *zap.Logger) *RecommendationService {
	return &RecommendationService{
		jobs:        jobs,
		store:       st,
		recommender: NewRecommender(client, log),
		log:         log,
	}
}

// Generate produces ranked recommendations for a user. Model trouble never
// bubbles up: every AI-stage failure degrades to the heuristic ranking with
// ai_used=false. The only errors returned are caller mistakes and store
// failures.
func (s *RecommendationService) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	pool := req.CandidatePool
	if pool <= 0 {
		pool = defaultCandidatePool
	}
	if pool < limit {
		return GenerateResult{}, fmt.Errorf("%w: candidate_pool must be >= limit", ErrInvalidArgument)
	}

	email := store.NormalizeEmail(req.UserEmail)

	jobs := s.jobs.Visible(feed.DefaultVisibleLimit)
	if len(jobs) == 0 {
		return GenerateResult{
			RecommendedRoles:  []string{},
			RecommendedSkills: []string{},
			Jobs:              []RecommendedJob{},
		}, nil
	}

	profile, err := s.store.GetProfile(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		profile = store.Profile{UserEmail: email}
	} else if err != nil {
		return GenerateResult{}, fmt.Errorf("load profile: %w", err)
	}

	candidates := ScoreJobsForUser(jobs, profile, pool)
	profileText := ProfileSummary(profile)

	resumeText := ""
	if req.UseAI || req.ResumeID != "" {
		var resume store.Resume
		var resumeErr error
		if req.ResumeID != "" {
			resume, resumeErr = s.store.GetResume(ctx, email, req.ResumeID)
		} else {
			resume, resumeErr = s.store.LatestResume(ctx, email)
		}
		switch {
		case resumeErr == nil:
			resumeText = truncate(strings.TrimSpace(resume.Text), maxResumeContext)
		case errors.Is(resumeErr, store.ErrNotFound):
			// Recommendations work fine without a resume.
		default:
			return GenerateResult{}, fmt.Errorf("load resume: %w", resumeErr)
		}
	}

	var rec Recommendations
	aiUsed := false
	if req.UseAI {
		result, recErr := s.recommender.Recommend(ctx, candidates, profileText, resumeText, limit)
		if recErr != nil {
			observability.IncHeuristicFallback()
			s.log.Warn("ai rerank unavailable, serving heuristic ranking", zap.Error(recErr))
		} else {
			aiUsed = true
			rec = result
		}
	}

	byUID := make(map[string]ScoredJob, len(candidates))
	for _, c := range candidates {
		byUID[c.Job.UID] = c
	}

	seen := map[string]struct{}{}
	ordered := make([]string, 0, limit)
	for _, uid := range rec.RankedJobUIDs {
		if _, ok := byUID[uid]; !ok {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		ordered = append(ordered, uid)
	}
	for _, c := range candidates {
		if len(ordered) >= limit {
			break
		}
		if _, dup := seen[c.Job.UID]; dup {
			continue
		}
		seen[c.Job.UID] = struct{}{}
		ordered = append(ordered, c.Job.UID)
	}
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]RecommendedJob, 0, len(ordered))
	for _, uid := range ordered {
		c, ok := byUID[uid]
		if !ok {
			continue
		}

		reason := rec.JobReasons[uid]
		if reason == "" && len(c.MatchedKeywords) > 0 {
			kws := c.MatchedKeywords
			if len(kws) > 5 {
				kws = kws[:5]
			}
			reason = "Matched keywords: " + strings.Join(kws, ", ")
		}

		out = append(out, RecommendedJob{
			Job:    c.Job,
			Score:  math.Round(c.Score*10000) / 10000,
			Reason: reason,
		})
	}

	summary := rec.CareerSummary
	if summary == "" {
		summary = profileText
	}
	roles := rec.RecommendedRoles
	if roles == nil {
		roles = []string{}
	}
	skills := rec.RecommendedSkills
	if skills == nil {
		skills = []string{}
	}

	observability.IncRecommendationServed()

	return GenerateResult{
		AIUsed:            aiUsed,
		CareerSummary:     summary,
		RecommendedRoles:  roles,
		RecommendedSkills: skills,
		Jobs:              out,
	}, nil
}
