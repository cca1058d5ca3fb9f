package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore backs the API with postgres via database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, email string) (Profile, error) {
	email = NormalizeEmail(email)

	var (
		p        Profile
		name     sql.NullString
		major    sql.NullString
		interest sql.NullString
		gradYear sql.NullInt64
		skills   pq.StringArray
	)

	err := s.db.QueryRowContext(ctx, `
SELECT user_email, name, major_or_program, career_interests, skills, graduation_year, updated_at
FROM profiles
WHERE user_email = $1
`, email).Scan(&p.UserEmail, &name, &major, &interest, &skills, &gradYear, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	p.Name = name.String
	p.MajorOrProgram = major.String
	p.CareerInterests = interest.String
	p.GraduationYear = int(gradYear.Int64)
	p.Skills = []string(skills)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile Profile) (Profile, error) {
	profile.UserEmail = NormalizeEmail(profile.UserEmail)
	profile.UpdatedAt = time.Now().UTC()
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO profiles (user_email, name, major_or_program, career_interests, skills, graduation_year, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_email) DO UPDATE SET
    name = EXCLUDED.name,
    major_or_program = EXCLUDED.major_or_program,
    career_interests = EXCLUDED.career_interests,
    skills = EXCLUDED.skills,
    graduation_year = EXCLUDED.graduation_year,
    updated_at = EXCLUDED.updated_at
`, profile.UserEmail, profile.Name, profile.MajorOrProgram, profile.CareerInterests,
		pq.Array(profile.Skills), profile.GraduationYear, profile.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *PostgresStore) CreateResume(ctx context.Context, resume Resume) (Resume, error) {
	resume.ID = uuid.NewString()
	resume.UserEmail = NormalizeEmail(resume.UserEmail)
	resume.UploadedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO resumes (id, user_email, filename, resume_text, uploaded_at)
VALUES ($1, $2, $3, $4, $5)
`, resume.ID, resume.UserEmail, resume.Filename, resume.Text, resume.UploadedAt)
	if err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (s *PostgresStore) ListResumes(ctx context.Context, email string) ([]Resume, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_email, filename, resume_text, uploaded_at
FROM resumes
WHERE user_email = $1
ORDER BY uploaded_at DESC
`, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []Resume
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.UserEmail, &r.Filename, &r.Text, &r.UploadedAt); err != nil {
			return nil, err
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

func (s *PostgresStore) GetResume(ctx context.Context, email, id string) (Resume, error) {
	var r Resume
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_email, filename, resume_text, uploaded_at
FROM resumes
WHERE user_email = $1 AND id = $2
`, NormalizeEmail(email), id).Scan(&r.ID, &r.UserEmail, &r.Filename, &r.Text, &r.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	return r, nil
}

func (s *PostgresStore) LatestResume(ctx context.Context, email string) (Resume, error) {
	var r Resume
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_email, filename, resume_text, uploaded_at
FROM resumes
WHERE user_email = $1
ORDER BY uploaded_at DESC
LIMIT 1
`, NormalizeEmail(email)).Scan(&r.ID, &r.UserEmail, &r.Filename, &r.Text, &r.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	return r, nil
}

func (s *PostgresStore) CreateFeedback(ctx context.Context, feedback ResumeFeedback) (ResumeFeedback, error) {
	feedback.ID = uuid.NewString()
	feedback.UserEmail = NormalizeEmail(feedback.UserEmail)
	feedback.CreatedAt = time.Now().UTC()

	var resumeID sql.NullString
	if feedback.ResumeID != "" {
		resumeID = sql.NullString{String: feedback.ResumeID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO resume_feedback (id, user_email, resume_id, summary, strong_points, areas_to_improve, suggested_edits, skill_gaps, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, feedback.ID, feedback.UserEmail, resumeID, feedback.Summary,
		pq.Array(feedback.StrongPoints), pq.Array(feedback.AreasToImprove),
		pq.Array(feedback.SuggestedEdits), pq.Array(feedback.SkillGaps), feedback.CreatedAt)
	if err != nil {
		return ResumeFeedback{}, err
	}
	return feedback, nil
}

func (s *PostgresStore) ListFeedback(ctx context.Context, email string) ([]ResumeFeedback, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_email, resume_id, summary, strong_points, areas_to_improve, suggested_edits, skill_gaps, created_at
FROM resume_feedback
WHERE user_email = $1
ORDER BY created_at DESC
`, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ResumeFeedback
	for rows.Next() {
		var (
			f        ResumeFeedback
			resumeID sql.NullString
			strong   pq.StringArray
			improve  pq.StringArray
			edits    pq.StringArray
			gaps     pq.StringArray
		)
		if err := rows.Scan(&f.ID, &f.UserEmail, &resumeID, &f.Summary,
			&strong, &improve, &edits, &gaps, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.ResumeID = resumeID.String
		f.StrongPoints = []string(strong)
		f.AreasToImprove = []string(improve)
		f.SuggestedEdits = []string(edits)
		f.SkillGaps = []string(gaps)
		items = append(items, f)
	}
	return items, rows.Err()
}
