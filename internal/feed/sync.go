package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// feedDocument is the upstream payload shape published by the listing bot.
type feedDocument struct {
	Internships []map[string]any `json:"internships"`
}

// Syncer downloads the upstream listing feed, sanitizes it, and atomically
// replaces the local feed file so the Loader's mtime key flips exactly once
// per refresh.
type Syncer struct {
	url    string
	path   string
	client *http.Client
	log    *zap.Logger
}

func NewSyncer(url, path string, log *zap.Logger) *Syncer {
	return &Syncer{
		url:  url,
		path: path,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

// Run performs one fetch-sanitize-write cycle.
func (s *Syncer) Run(ctx context.Context) error {
	body, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("feed fetch failed: %w", err)
	}

	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("feed decode failed: %w", err)
	}

	records := make([]map[string]any, 0, len(doc.Internships))
	for _, item := range doc.Internships {
		if item == nil {
			continue
		}
		sanitizeRecord(item)
		records = append(records, item)
	}

	if err := s.write(records); err != nil {
		return err
	}

	s.log.Info("feed synced", zap.Int("listings", len(records)), zap.String("path", s.path))
	return nil
}

func (s *Syncer) fetch(ctx context.Context) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("retryable status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Syncer) write(records []map[string]any) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("feed encode failed: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("feed dir create failed: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".listings-*.json")
	if err != nil {
		return fmt.Errorf("feed temp file failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("feed write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("feed write failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("feed replace failed: %w", err)
	}
	return nil
}

// Start runs the sync loop: once immediately, then on every tick until the
// context is cancelled. A failed cycle is logged and retried on the next
// tick; the previous feed file stays in place meanwhile.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	go s.loop(ctx, interval)
}

func (s *Syncer) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Syncer) runOnce(ctx context.Context) {
	if err := s.Run(ctx); err != nil {
		s.log.Warn("feed sync failed", zap.Error(err))
	}
}
