package feed

import (
	"encoding/json"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/observability"
)

// DefaultVisibleLimit caps how many listings a single load returns.
const DefaultVisibleLimit = 5000

// Loader serves normalized visible listings from the local feed file with an
// mtime-keyed cache: the file is re-read only after the sync process has
// replaced it. Refreshing is lazy and guarded by a mutex so concurrent
// callers never observe a half-built cache.
type Loader struct {
	path string
	log  *zap.Logger

	// stat and read are swappable for tests.
	stat func(string) (fs.FileInfo, error)
	read func(string) ([]byte, error)

	mu     sync.Mutex
	loaded bool
	mtime  time.Time
	cached []Job
}

func NewLoader(path string, log *zap.Logger) *Loader {
	return &Loader{
		path: path,
		log:  log,
		stat: os.Stat,
		read: os.ReadFile,
	}
}

// Visible returns up to limit normalized visible listings, newest first.
// A missing or corrupt feed file degrades to an empty result.
func (l *Loader) Visible(limit int) []Job {
	if limit < 1 {
		return nil
	}

	var mtime time.Time
	if info, err := l.stat(l.path); err == nil {
		mtime = info.ModTime()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded && !mtime.IsZero() && mtime.Equal(l.mtime) {
		return l.slice(limit)
	}

	l.cached = l.rebuild()
	l.mtime = mtime
	l.loaded = true
	observability.IncFeedRefresh()
	l.log.Debug("feed cache rebuilt", zap.Int("jobs", len(l.cached)), zap.Time("mtime", mtime))

	return l.slice(limit)
}

func (l *Loader) slice(limit int) []Job {
	if limit > len(l.cached) {
		limit = len(l.cached)
	}
	out := make([]Job, limit)
	copy(out, l.cached[:limit])
	return out
}

func (l *Loader) rebuild() []Job {
	body, err := l.read(l.path)
	if err != nil {
		l.log.Warn("feed file unreadable", zap.String("path", l.path), zap.Error(err))
		return nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		l.log.Warn("feed file corrupt", zap.String("path", l.path), zap.Error(err))
		return nil
	}

	visible := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if item != nil && asVisible(item["is_visible"]) {
			visible = append(visible, item)
		}
	}

	// Newest first; stable so the feed's own order breaks timestamp ties.
	sort.SliceStable(visible, func(i, j int) bool {
		return asInt64(visible[i]["date_posted"]) > asInt64(visible[j]["date_posted"])
	})

	jobs := make([]Job, 0, len(visible))
	for _, item := range visible {
		jobs = append(jobs, normalizeJob(item))
	}
	return jobs
}
