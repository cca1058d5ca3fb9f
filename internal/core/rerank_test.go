package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRerankFiltersAndPads(t *testing.T) {
	client := &scriptedClient{
		respond: func(call int, system, user string) (string, error) {
			return `{
				"career_summary": "Strong backend foundation, lean into Go services.",
				"recommended_roles": ["Backend Intern"],
				"recommended_skills": ["Go", "SQL"],
				"ranked_job_uids": ["j003", "zz-unknown", "j003", "j001"],
				"job_reasons": {"j003": "top pick for Go work"}
			}`, nil
		},
	}
	r := NewRecommender(client, zap.NewNop())
	short := compactCandidates(scoredPool(5))

	rec, err := r.rerank(context.Background(), short, "Skills: Go", "", 5, nil)
	require.NoError(t, err)

	// Unknown uids drop, duplicates drop, the rest pads in shortlist order.
	assert.Equal(t, []string{"j003", "j001", "j002", "j004", "j005"}, rec.RankedJobUIDs)
	assert.Equal(t, "Strong backend foundation, lean into Go services.", rec.CareerSummary)
	assert.Equal(t, []string{"Backend Intern"}, rec.RecommendedRoles)
	assert.Equal(t, []string{"Go", "SQL"}, rec.RecommendedSkills)
	assert.Equal(t, "top pick for Go work", rec.JobReasons["j003"])
}

func TestRerankSurvivesEmptyObject(t *testing.T) {
	client := &scriptedClient{}
	r := NewRecommender(client, zap.NewNop())
	short := compactCandidates(scoredPool(3))

	rec, err := r.rerank(context.Background(), short, "Skills: Go", "", 10, nil)
	require.NoError(t, err)

	// Fewer shortlist entries than limit: the ranking is the whole shortlist.
	assert.Equal(t, []string{"j001", "j002", "j003"}, rec.RankedJobUIDs)
	assert.Equal(t, "Skills: Go", rec.CareerSummary)
	assert.Empty(t, rec.RecommendedRoles)
	assert.Empty(t, rec.RecommendedSkills)
}

func TestRerankSummaryFallsBackToPlaceholder(t *testing.T) {
	client := &scriptedClient{}
	r := NewRecommender(client, zap.NewNop())

	rec, err := r.rerank(context.Background(), compactCandidates(scoredPool(1)), "", "", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "Career recommendations generated.", rec.CareerSummary)
}

func TestRerankAdoptsScoringReasons(t *testing.T) {
	client := &scriptedClient{}
	r := NewRecommender(client, zap.NewNop())
	short := compactCandidates(scoredPool(3))
	scoreReasons := map[string]string{
		"j001": "matches profile keywords",
		"j999": "not in the shortlist",
	}

	rec, err := r.rerank(context.Background(), short, "Skills: Go", "", 3, scoreReasons)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"j001": "matches profile keywords"}, rec.JobReasons)
}

func TestRerankTruncatesLongFields(t *testing.T) {
	client := &scriptedClient{
		respond: func(call int, system, user string) (string, error) {
			return `{"career_summary": "` + strings.Repeat("s", 900) + `",` +
				`"ranked_job_uids": ["j001"],` +
				`"job_reasons": {"j001": "` + strings.Repeat("r", 300) + `"}}`, nil
		},
	}
	r := NewRecommender(client, zap.NewNop())

	rec, err := r.rerank(context.Background(), compactCandidates(scoredPool(1)), "", "", 1, nil)
	require.NoError(t, err)
	assert.Len(t, rec.CareerSummary, 800)
	assert.Len(t, rec.JobReasons["j001"], 200)
}

func TestRerankRespectsLimit(t *testing.T) {
	client := &scriptedClient{}
	r := NewRecommender(client, zap.NewNop())

	rec, err := r.rerank(context.Background(), compactCandidates(scoredPool(8)), "p", "", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"j001", "j002", "j003", "j004"}, rec.RankedJobUIDs)
}

func TestRerankWrapsGatewayError(t *testing.T) {
	errBoom := errors.New("boom")
	client := &scriptedClient{
		respond: func(call int, system, user string) (string, error) {
			return "", errBoom
		},
	}
	r := NewRecommender(client, zap.NewNop())

	_, err := r.rerank(context.Background(), compactCandidates(scoredPool(2)), "p", "", 2, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "rerank failed")
}
