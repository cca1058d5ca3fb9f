package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/observability"
)

// Recommendations is the structured result of the rerank stage.
type Recommendations struct {
	CareerSummary     string            `json:"career_summary"`
	RecommendedRoles  []string          `json:"recommended_roles"`
	RecommendedSkills []string          `json:"recommended_skills"`
	RankedJobUIDs     []string          `json:"ranked_job_uids"`
	JobReasons        map[string]string `json:"job_reasons"`
}

// rerank makes the single final model call over the shortlist and forces
// the answer into shape. Whatever the model returns, the ranking comes out
// deduplicated, drawn only from the shortlist, and padded to exactly
// min(limit, len(shortlist)) entries.
func (r *Recommender) rerank(ctx context.Context, short []compactJob, profileText, resumeSnippet string, limit int, scoreReasons map[string]string) (Recommendations, error) {
	system := fmt.Sprintf("You are a helpful career coach. "+
		"Return ONLY a single JSON object (no markdown, no prose). "+
		"The JSON MUST include exactly these keys: "+
		"career_summary, recommended_roles, recommended_skills, ranked_job_uids, job_reasons. "+
		"Do not omit keys. Do not return extra keys. "+
		"career_summary must be a short paragraph (<= 800 chars). "+
		"recommended_roles must be an array of strings (<= 6). "+
		"recommended_skills must be an array of strings (<= 10). "+
		"ranked_job_uids must be an array of strings (EXACTLY %d items). "+
		"job_reasons must be an object mapping uid -> reason (<= 200 chars each).", limit)

	payload, err := json.Marshal(short)
	if err != nil {
		return Recommendations{}, fmt.Errorf("encode shortlist: %w", err)
	}

	user := fmt.Sprintf(`Given the user profile and the candidate internship listings, select and rank the best matches.
Constraints:
- Return EXACTLY %d ranked_job_uids.
- Only use uids that appear in candidate_jobs.
- Reasons must reference specific user profile signals or listing fields (title/category/location).

USER_PROFILE: %s

RESUME_SNIPPET (optional):
%s

CANDIDATE_JOBS (JSON):
%s`, limit, profileText, resumeSnippet, payload)

	observability.IncAICall(r.client.Name())
	raw, err := r.client.ChatJSON(ctx, system, user)
	if err != nil {
		observability.IncAIFailure()
		observability.IncError(observability.ClassifyAIError(err), "reranker")
		return Recommendations{}, fmt.Errorf("rerank failed: %w", err)
	}

	parsed := ai.ExtractObject(raw)

	summary := ""
	if s, ok := parsed["career_summary"].(string); ok {
		summary = strings.TrimSpace(s)
	}
	if summary == "" {
		summary = profileText
		if summary == "" {
			summary = "Career recommendations generated."
		}
	}

	roles := ai.StringList(parsed["recommended_roles"], 6)
	skills := ai.StringList(parsed["recommended_skills"], 10)
	ranked := ai.StringList(parsed["ranked_job_uids"], limit)
	jobReasons := ai.StringMap(parsed["job_reasons"], limit)

	available := make([]string, 0, len(short))
	availableSet := make(map[string]struct{}, len(short))
	for _, job := range short {
		available = append(available, job.UID)
		availableSet[job.UID] = struct{}{}
	}

	seen := map[string]struct{}{}
	filtered := make([]string, 0, limit)
	for _, uid := range ranked {
		if _, ok := availableSet[uid]; !ok {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		filtered = append(filtered, uid)
		if len(filtered) >= limit {
			break
		}
	}
	for _, uid := range available {
		if len(filtered) >= limit {
			break
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		filtered = append(filtered, uid)
	}

	// The model sometimes skips job_reasons entirely. Stage-1 reasons are
	// better than none.
	if len(jobReasons) == 0 && len(scoreReasons) > 0 {
		jobReasons = map[string]string{}
		for _, uid := range filtered {
			if reason := scoreReasons[uid]; reason != "" {
				jobReasons[uid] = reason
			}
		}
	}
	for uid, reason := range jobReasons {
		jobReasons[uid] = truncate(reason, 200)
	}

	r.log.Debug("rerank completed",
		zap.Int("shortlist", len(short)),
		zap.Int("ranked", len(filtered)))

	return Recommendations{
		CareerSummary:     truncate(summary, 800),
		RecommendedRoles:  roles,
		RecommendedSkills: skills,
		RankedJobUIDs:     filtered,
		JobReasons:        jobReasons,
	}, nil
}
