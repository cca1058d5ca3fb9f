package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a record does not exist. The API layer maps
// it to a 404.
var ErrNotFound = errors.New("record not found")

// Profile holds what a student told us about themselves. Keyed by email.
type Profile struct {
	UserEmail       string    `json:"user_email"`
	Name            string    `json:"name,omitempty"`
	MajorOrProgram  string    `json:"major_or_program,omitempty"`
	CareerInterests string    `json:"career_interests,omitempty"`
	Skills          []string  `json:"skills"`
	GraduationYear  int       `json:"graduation_year,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Resume is one uploaded resume text. A user may keep several.
type Resume struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	Filename   string    `json:"filename,omitempty"`
	Text       string    `json:"text"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ResumeFeedback is one AI review of a resume, persisted so users can
// revisit past feedback.
type ResumeFeedback struct {
	ID             string    `json:"id"`
	UserEmail      string    `json:"user_email"`
	ResumeID       string    `json:"resume_id,omitempty"`
	Summary        string    `json:"summary"`
	StrongPoints   []string  `json:"strong_points"`
	AreasToImprove []string  `json:"areas_to_improve"`
	SuggestedEdits []string  `json:"suggested_edits"`
	SkillGaps      []string  `json:"skill_gaps"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the persistence surface shared by the postgres and local
// implementations. Implementations assign IDs and timestamps on create.
type Store interface {
	GetProfile(ctx context.Context, email string) (Profile, error)
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)

	CreateResume(ctx context.Context, resume Resume) (Resume, error)
	ListResumes(ctx context.Context, email string) ([]Resume, error)
	GetResume(ctx context.Context, email, id string) (Resume, error)
	LatestResume(ctx context.Context, email string) (Resume, error)

	CreateFeedback(ctx context.Context, feedback ResumeFeedback) (ResumeFeedback, error)
	ListFeedback(ctx context.Context, email string) ([]ResumeFeedback, error)

	Ping(ctx context.Context) error
	Close() error
}

// NormalizeEmail lowercases and trims an email so lookups are stable no
// matter how the header was typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
