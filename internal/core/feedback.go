package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/observability"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

// ErrEmptyResume is returned when the stored resume has no usable text.
// The API maps it to a 409.
var ErrEmptyResume = errors.New("resume has no text")

const defaultSkillGapAdvice = "Add a concise Skills section aligned to your target internship role (languages, tools, frameworks, and key keywords)."

const feedbackSystemPrompt = "You are a precise resume reviewer for internship applicants. " +
	"Return ONLY a single JSON object (no markdown, no prose). " +
	"The JSON MUST include exactly these keys: " +
	"summary, strong_points, areas_to_improve, suggested_edits, skill_gaps. " +
	"Do not omit keys. Do not return extra keys. " +
	"summary must be a short paragraph (<= 600 chars). " +
	"strong_points must be an array of strings (<= 5). " +
	"areas_to_improve must be an array of strings (<= 5). " +
	"suggested_edits must be an array of concrete rewrite suggestions (<= 8). " +
	"skill_gaps must be an array of missing skills to learn (<= 3)."

// FeedbackService reviews stored resumes with the model and persists the
// result. Unlike recommendations there is no heuristic fallback here, a
// gateway failure is returned to the caller.
type FeedbackService struct {
	store  store.Store
	client ai.Client
	log    *zap.Logger
}

func NewFeedbackService(st store.Store, client ai.Client, log *zap.Logger) *FeedbackService {
	return &FeedbackService{store: st, client: client, log: log}
}

// Generate reviews the resume identified by resumeID, or the latest upload
// when resumeID is empty.
func (s *FeedbackService) Generate(ctx context.Context, userEmail, resumeID string) (store.ResumeFeedback, error) {
	email := store.NormalizeEmail(userEmail)

	var resume store.Resume
	var err error
	if resumeID != "" {
		resume, err = s.store.GetResume(ctx, email, resumeID)
	} else {
		resume, err = s.store.LatestResume(ctx, email)
	}
	if err != nil {
		return store.ResumeFeedback{}, fmt.Errorf("load resume: %w", err)
	}

	text := strings.TrimSpace(resume.Text)
	if text == "" {
		return store.ResumeFeedback{}, ErrEmptyResume
	}
	text = truncate(text, maxResumeContext)

	user := fmt.Sprintf(`Review this resume for internship applications.
Rules:
- Be specific: reference actual lines, skills, and projects from the resume.
- suggested_edits must be actionable rewrites, not generic advice.

RESUME:
%s`, text)

	observability.IncAICall(s.client.Name())
	raw, err := s.client.ChatJSON(ctx, feedbackSystemPrompt, user)
	if err != nil {
		observability.IncAIFailure()
		observability.IncError(observability.ClassifyAIError(err), "resume_feedback")
		return store.ResumeFeedback{}, fmt.Errorf("resume feedback failed: %w", err)
	}

	parsed := ai.ExtractObject(raw)

	summary := ""
	if v, ok := parsed["summary"].(string); ok {
		summary = strings.TrimSpace(v)
	}
	if summary == "" {
		summary = "Resume feedback generated."
	}

	strong := ai.StringList(parsed["strong_points"], 5)
	improve := ai.StringList(parsed["areas_to_improve"], 5)
	edits := ai.StringList(parsed["suggested_edits"], 8)
	gaps := ai.StringList(parsed["skill_gaps"], 3)
	if len(gaps) == 0 {
		gaps = []string{defaultSkillGapAdvice}
	}
	if strong == nil {
		strong = []string{}
	}
	if improve == nil {
		improve = []string{}
	}
	if edits == nil {
		edits = []string{}
	}

	saved, err := s.store.CreateFeedback(ctx, store.ResumeFeedback{
		UserEmail:      email,
		ResumeID:       resume.ID,
		Summary:        truncate(summary, 600),
		StrongPoints:   strong,
		AreasToImprove: improve,
		SuggestedEdits: edits,
		SkillGaps:      gaps,
	})
	if err != nil {
		return store.ResumeFeedback{}, fmt.Errorf("save feedback: %w", err)
	}

	observability.IncFeedbackGenerated()
	s.log.Info("resume feedback generated",
		zap.String("resume_id", resume.ID),
		zap.Int("suggested_edits", len(edits)))
	return saved, nil
}
