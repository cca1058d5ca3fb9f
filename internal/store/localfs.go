package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalStore keeps everything in one JSON document on disk. It is the
// development default so the server runs without postgres. Every operation
// re-reads the document under the lock, so external edits to the file are
// picked up between requests.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

type localDocument struct {
	Profiles map[string]Profile `json:"profiles"`
	Resumes  []Resume           `json:"resumes"`
	Feedback []ResumeFeedback   `json:"feedback"`
}

func NewLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path}
	if _, err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return s, nil
}

func (s *LocalStore) Close() error { return nil }

func (s *LocalStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

// load reads the document, treating a missing file as an empty store.
func (s *LocalStore) load() (localDocument, error) {
	doc := localDocument{Profiles: map[string]Profile{}}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("corrupt store file %s: %w", s.path, err)
	}
	if doc.Profiles == nil {
		doc.Profiles = map[string]Profile{}
	}
	return doc, nil
}

func (s *LocalStore) save(doc localDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *LocalStore) GetProfile(ctx context.Context, email string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Profile{}, err
	}

	p, ok := doc.Profiles[NormalizeEmail(email)]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func (s *LocalStore) UpsertProfile(ctx context.Context, profile Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Profile{}, err
	}

	profile.UserEmail = NormalizeEmail(profile.UserEmail)
	profile.UpdatedAt = time.Now().UTC()
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	doc.Profiles[profile.UserEmail] = profile

	if err := s.save(doc); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *LocalStore) CreateResume(ctx context.Context, resume Resume) (Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Resume{}, err
	}

	resume.ID = uuid.NewString()
	resume.UserEmail = NormalizeEmail(resume.UserEmail)
	resume.UploadedAt = time.Now().UTC()
	doc.Resumes = append(doc.Resumes, resume)

	if err := s.save(doc); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (s *LocalStore) ListResumes(ctx context.Context, email string) ([]Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	var resumes []Resume
	for _, r := range doc.Resumes {
		if r.UserEmail == email {
			resumes = append(resumes, r)
		}
	}
	sort.SliceStable(resumes, func(i, j int) bool {
		return resumes[i].UploadedAt.After(resumes[j].UploadedAt)
	})
	return resumes, nil
}

func (s *LocalStore) GetResume(ctx context.Context, email, id string) (Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Resume{}, err
	}

	email = NormalizeEmail(email)
	for _, r := range doc.Resumes {
		if r.UserEmail == email && r.ID == id {
			return r, nil
		}
	}
	return Resume{}, ErrNotFound
}

func (s *LocalStore) LatestResume(ctx context.Context, email string) (Resume, error) {
	resumes, err := s.ListResumes(ctx, email)
	if err != nil {
		return Resume{}, err
	}
	if len(resumes) == 0 {
		return Resume{}, ErrNotFound
	}
	return resumes[0], nil
}

func (s *LocalStore) CreateFeedback(ctx context.Context, feedback ResumeFeedback) (ResumeFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return ResumeFeedback{}, err
	}

	feedback.ID = uuid.NewString()
	feedback.UserEmail = NormalizeEmail(feedback.UserEmail)
	feedback.CreatedAt = time.Now().UTC()
	doc.Feedback = append(doc.Feedback, feedback)

	if err := s.save(doc); err != nil {
		return ResumeFeedback{}, err
	}
	return feedback, nil
}

func (s *LocalStore) ListFeedback(ctx context.Context, email string) ([]ResumeFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	var items []ResumeFeedback
	for _, f := range doc.Feedback {
		if f.UserEmail == email {
			items = append(items, f)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
