package feed

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInfo struct{ mtime time.Time }

func (f fakeInfo) Name() string       { return "listings.json" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.mtime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

func stubLoader(content *string, mtime *time.Time, reads *int) *Loader {
	l := NewLoader("listings.json", zap.NewNop())
	l.stat = func(string) (fs.FileInfo, error) {
		return fakeInfo{mtime: *mtime}, nil
	}
	l.read = func(string) ([]byte, error) {
		*reads++
		return []byte(*content), nil
	}
	return l
}

func TestVisibleCachesUntilFileChanges(t *testing.T) {
	content := `[{"id":"1","source":"s","title":"SWE Intern","is_visible":true,"date_posted":100}]`
	mtime := time.Unix(1000, 0)
	reads := 0
	l := stubLoader(&content, &mtime, &reads)

	first := l.Visible(10)
	second := l.Visible(10)
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, reads)

	content = `[
		{"id":"1","source":"s","title":"SWE Intern","is_visible":true,"date_posted":100},
		{"id":"2","source":"s","title":"Data Intern","is_visible":true,"date_posted":200}
	]`
	mtime = time.Unix(2000, 0)

	third := l.Visible(10)
	assert.Equal(t, 2, reads)
	require.Len(t, third, 2)
	assert.Equal(t, "s:2", third[0].UID)
}

func TestVisibleFiltersAndOrders(t *testing.T) {
	content := `[
		{"id":"old","source":"s","is_visible":true,"date_posted":100},
		{"id":"hidden","source":"s","is_visible":false,"date_posted":300},
		{"id":"new","source":"s","is_visible":true,"date_posted":200},
		{"id":"undated","source":"s","is_visible":true}
	]`
	mtime := time.Unix(1000, 0)
	reads := 0
	l := stubLoader(&content, &mtime, &reads)

	jobs := l.Visible(10)
	require.Len(t, jobs, 3)
	assert.Equal(t, "s:new", jobs[0].UID)
	assert.Equal(t, "s:old", jobs[1].UID)
	assert.Equal(t, "s:undated", jobs[2].UID)
}

func TestVisibleLimit(t *testing.T) {
	content := `[
		{"id":"1","source":"s","is_visible":true,"date_posted":300},
		{"id":"2","source":"s","is_visible":true,"date_posted":200},
		{"id":"3","source":"s","is_visible":true,"date_posted":100}
	]`
	mtime := time.Unix(1000, 0)
	reads := 0
	l := stubLoader(&content, &mtime, &reads)

	assert.Nil(t, l.Visible(0))

	jobs := l.Visible(2)
	require.Len(t, jobs, 2)
	assert.Equal(t, "s:1", jobs[0].UID)

	assert.Len(t, l.Visible(50), 3)
}

func TestVisibleReturnsCopies(t *testing.T) {
	content := `[{"id":"1","source":"s","title":"SWE Intern","is_visible":true}]`
	mtime := time.Unix(1000, 0)
	reads := 0
	l := stubLoader(&content, &mtime, &reads)

	jobs := l.Visible(10)
	require.Len(t, jobs, 1)
	jobs[0].Title = "mutated"

	again := l.Visible(10)
	assert.Equal(t, "SWE Intern", again[0].Title)
}

func TestVisibleMissingFile(t *testing.T) {
	l := NewLoader("listings.json", zap.NewNop())
	l.stat = func(string) (fs.FileInfo, error) { return nil, os.ErrNotExist }
	l.read = func(string) ([]byte, error) { return nil, os.ErrNotExist }

	jobs := l.Visible(10)
	assert.Empty(t, jobs)
}

func TestVisibleCorruptFile(t *testing.T) {
	content := `{"not": "a list"}`
	mtime := time.Unix(1000, 0)
	reads := 0
	l := stubLoader(&content, &mtime, &reads)

	assert.Empty(t, l.Visible(10))
}
