package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
	"github.com/otabekmirzaev/intern-scout/internal/core"
	"github.com/otabekmirzaev/intern-scout/internal/feed"
	"github.com/otabekmirzaev/intern-scout/internal/observability"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

var validate = validator.New()

// requireEmail pulls the caller identity from X-User-Email. Auth proper is
// handled upstream; the service only needs a stable, sane-looking key.
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := store.NormalizeEmail(r.Header.Get("X-User-Email"))
	if email == "" {
		respondError(w, http.StatusBadRequest, "X-User-Email header is required")
		return "", false
	}
	if err := validate.Var(email, "email"); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid X-User-Email header")
		return "", false
	}
	return email, true
}

// decodeBody decodes a JSON body into dst. An empty body is fine, the
// request struct keeps its defaults.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	jobs := s.jobs.Visible(limit)
	if jobs == nil {
		jobs = []feed.Job{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	profile, err := s.store.GetProfile(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		profile = store.Profile{UserEmail: email, Skills: []string{}}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch profile: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name            string   `json:"name" validate:"max=200"`
	MajorOrProgram  string   `json:"major_or_program" validate:"max=200"`
	CareerInterests string   `json:"career_interests" validate:"max=500"`
	Skills          []string `json:"skills" validate:"max=100"`
	GraduationYear  int      `json:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	saved, err := s.store.UpsertProfile(r.Context(), store.Profile{
		UserEmail:       email,
		Name:            req.Name,
		MajorOrProgram:  req.MajorOrProgram,
		CareerInterests: req.CareerInterests,
		Skills:          req.Skills,
		GraduationYear:  req.GraduationYear,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save profile: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

type createResumeRequest struct {
	Filename string `json:"filename" validate:"max=255"`
	Text     string `json:"text" validate:"required,max=200000"`
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req createResumeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	saved, err := s.store.CreateResume(r.Context(), store.Resume{
		UserEmail: email,
		Filename:  req.Filename,
		Text:      req.Text,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save resume: "+err.Error())
		return
	}

	observability.IncResumeUploaded()
	respondJSON(w, http.StatusCreated, map[string]string{"resume_id": saved.ID})
}

type resumeListItem struct {
	ResumeID   string    `json:"resume_id"`
	Filename   string    `json:"filename,omitempty"`
	TextChars  int       `json:"text_chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	resumes, err := s.store.ListResumes(r.Context(), email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch resumes: "+err.Error())
		return
	}

	items := make([]resumeListItem, 0, len(resumes))
	for _, resume := range resumes {
		items = append(items, resumeListItem{
			ResumeID:   resume.ID,
			Filename:   resume.Filename,
			TextChars:  len(resume.Text),
			UploadedAt: resume.UploadedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

type recommendationsRequest struct {
	Limit         int    `json:"limit" validate:"omitempty,gte=1,lte=50"`
	CandidatePool int    `json:"candidate_pool" validate:"omitempty,gte=10,lte=200"`
	UseAI         *bool  `json:"use_ai"`
	ResumeID      string `json:"resume_id" validate:"omitempty,max=50"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req recommendationsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	result, err := s.recs.Generate(r.Context(), core.GenerateRequest{
		UserEmail:     email,
		Limit:         req.Limit,
		CandidatePool: req.CandidatePool,
		UseAI:         useAI,
		ResumeID:      req.ResumeID,
	})
	if errors.Is(err, core.ErrInvalidArgument) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate recommendations: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type feedbackRequest struct {
	ResumeID string `json:"resume_id" validate:"omitempty,max=50"`
}

func (s *Server) handleResumeFeedback(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	fb, err := s.feedback.Generate(r.Context(), email, req.ResumeID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "No resume found for user")
		return
	case errors.Is(err, core.ErrEmptyResume):
		respondError(w, http.StatusConflict, "Resume has no text. Upload the resume text and try again.")
		return
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrNotIntegrated):
		respondError(w, http.StatusBadGateway, "Resume feedback failed: "+err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to generate feedback: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"feedback_id": fb.ID,
		"feedback":    fb,
	})
}

type feedbackListItem struct {
	FeedbackID string    `json:"feedback_id"`
	ResumeID   string    `json:"resume_id,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	items, err := s.store.ListFeedback(r.Context(), email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch feedback: "+err.Error())
		return
	}

	out := make([]feedbackListItem, 0, len(items))
	for _, fb := range items {
		out = append(out, feedbackListItem{
			FeedbackID: fb.ID,
			ResumeID:   fb.ResumeID,
			Summary:    fb.Summary,
			CreatedAt:  fb.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": out,
		"count": len(out),
	})
}
