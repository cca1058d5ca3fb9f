package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/observability"
)

const (
	// chunkSize keeps each scoring prompt small enough that local models
	// do not truncate their JSON answer.
	chunkSize        = 40
	maxCandidateJobs = 200
	maxResumeSnippet = 3000
)

const scoringSystemPrompt = "You are a helpful career coach. " +
	"Return ONLY a single JSON object (no markdown, no prose). " +
	"The JSON MUST include exactly these keys: scores, reasons. " +
	"scores must be an object mapping uid -> number (0..100). " +
	"reasons must be an object mapping uid -> short reason (<= 140 chars). " +
	"Do not omit keys. Do not return extra keys."

// compactJob is the trimmed listing payload sent to the model. URLs stay
// out of prompts, they burn tokens without adding ranking signal.
type compactJob struct {
	UID         string `json:"uid"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Sponsorship string `json:"sponsorship"`
}

// Recommender runs the two-stage ranking: chunked relevance scoring over
// the whole pool, then one rerank call over the shortlist.
type Recommender struct {
	client ai.Client
	log    *zap.Logger
}

func NewRecommender(client ai.Client, log *zap.Logger) *Recommender {
	return &Recommender{client: client, log: log}
}

// Recommend ranks the candidates for a user. Returns an error only when the
// final rerank call fails; scoring failures degrade silently to an unscored
// shortlist.
func (r *Recommender) Recommend(ctx context.Context, candidates []ScoredJob, profileText, resumeText string, limit int) (Recommendations, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	compact := compactCandidates(candidates)
	resumeSnippet := truncate(strings.TrimSpace(resumeText), maxResumeSnippet)

	scores, scoreReasons := r.scoreCandidates(ctx, compact, profileText, resumeSnippet)
	short := shortlist(compact, scores, limit)

	return r.rerank(ctx, short, profileText, resumeSnippet, limit, scoreReasons)
}

func compactCandidates(candidates []ScoredJob) []compactJob {
	n := len(candidates)
	if n > maxCandidateJobs {
		n = maxCandidateJobs
	}

	out := make([]compactJob, 0, n)
	for _, c := range candidates[:n] {
		uid := strings.TrimSpace(c.Job.UID)
		if uid == "" {
			continue
		}
		out = append(out, compactJob{
			UID:         uid,
			Title:       truncate(c.Job.Title, 200),
			Company:     truncate(c.Job.Company, 120),
			Location:    truncate(c.Job.Location, 160),
			Category:    truncate(c.Job.Category, 80),
			Sponsorship: truncate(c.Job.Sponsorship, 40),
		})
	}
	return out
}

// scoreCandidates asks the model to score every candidate, one chunk per
// call so no listing falls off the end of the context window. Scoring is
// best-effort: if any chunk call fails the whole stage is discarded and
// both maps come back empty, never partial.
func (r *Recommender) scoreCandidates(ctx context.Context, jobs []compactJob, profileText, resumeSnippet string) (map[string]float64, map[string]string) {
	scores := map[string]float64{}
	reasons := map[string]string{}

	for start := 0; start < len(jobs); start += chunkSize {
		end := start + chunkSize
		if end > len(jobs) {
			end = len(jobs)
		}
		chunk := jobs[start:end]

		payload, err := json.Marshal(chunk)
		if err != nil {
			return map[string]float64{}, map[string]string{}
		}

		user := fmt.Sprintf(`Score each candidate job for this user.
Rules:
- For EVERY job uid in candidate_jobs, output a score 0..100 and a short reason.
- Scores should reflect match to user profile + resume and the listing fields.

USER_PROFILE: %s

RESUME_SNIPPET (optional):
%s

CANDIDATE_JOBS (JSON):
%s`, profileText, resumeSnippet, payload)

		observability.IncAICall(r.client.Name())
		raw, err := r.client.ChatJSON(ctx, scoringSystemPrompt, user)
		if err != nil {
			observability.IncAIFailure()
			observability.IncError(observability.ClassifyAIError(err), "relevance_scorer")
			r.log.Warn("relevance scoring failed, skipping shortlist",
				zap.Int("chunk_start", start), zap.Error(err))
			return map[string]float64{}, map[string]string{}
		}

		parsed := ai.ExtractObject(raw)
		chunkScores := ai.FloatMap(parsed["scores"], len(chunk)+5)
		chunkReasons := ai.StringMap(parsed["reasons"], len(chunk)+5)

		for _, job := range chunk {
			score := chunkScores[job.UID]
			if score < 0 {
				score = 0
			}
			if score > 100 {
				score = 100
			}
			scores[job.UID] = score

			if reason := strings.TrimSpace(chunkReasons[job.UID]); reason != "" {
				reasons[job.UID] = truncate(reason, 200)
			}
		}
	}

	return scores, reasons
}

// shortlist keeps the best-scored candidates for the rerank call. Ties
// break on uid so the shortlist is stable run to run. An empty score map
// means scoring was skipped and the full pool goes through.
func shortlist(jobs []compactJob, scores map[string]float64, limit int) []compactJob {
	if len(scores) == 0 {
		return jobs
	}

	size := 2 * limit
	if size < 40 {
		size = 40
	}

	uids := make([]string, 0, len(scores))
	for uid := range scores {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool {
		si, sj := scores[uids[i]], scores[uids[j]]
		if si != sj {
			return si > sj
		}
		return uids[i] < uids[j]
	})
	if len(uids) > size {
		uids = uids[:size]
	}

	keep := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		keep[uid] = struct{}{}
	}

	out := make([]compactJob, 0, len(uids))
	for _, job := range jobs {
		if _, ok := keep[job.UID]; ok {
			out = append(out, job)
		}
	}
	return out
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
