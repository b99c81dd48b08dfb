package discovery

import (
	"context"
	"testing"

	"github.com/gnomegl/labslurp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrich_StatsAndTotals(t *testing.T) {
	src := newFakeSource()
	src.diffs[commitRef{1, "a"}] = []models.FileChange{
		{NewPath: "main.go", Additions: 10, Deletions: 2},
		{NewPath: "go.mod", Additions: 1, Deletions: 1},
	}
	src.diffs[commitRef{1, "b"}] = []models.FileChange{{NewPath: "README.md", Additions: 3}}
	src.diffs[commitRef{2, "c"}] = []models.FileChange{{NewPath: "x", Deletions: 4}}

	bucket := models.NewBucket()
	p1 := &models.Project{ID: 1}
	p2 := &models.Project{ID: 2}
	bucket.Add(p1, &models.Commit{ID: "a", Message: "see https://example.com/a"})
	bucket.Add(p1, &models.Commit{ID: "b"})
	bucket.Add(p2, &models.Commit{ID: "c"})

	require.NoError(t, NewEnricher(src, EnrichOptions{Links: true}).Enrich(context.Background(), bucket))

	e1, _ := bucket.Get(1)
	assert.Equal(t, models.DiffStat{FilesChanged: 3, Additions: 14, Deletions: 3}, e1.Totals)
	assert.Equal(t, models.DiffStat{FilesChanged: 2, Additions: 11, Deletions: 3}, *e1.Commits[0].Stats)
	assert.Equal(t, []string{"https://example.com/a"}, e1.Commits[0].Links)
	assert.Len(t, e1.Commits[0].Files, 2)

	assert.Equal(t, models.DiffStat{FilesChanged: 4, Additions: 14, Deletions: 7}, bucket.Totals())
}

func TestEnrich_DiffFailureDegradesToZero(t *testing.T) {
	src := newFakeSource()
	src.failDiffs[commitRef{1, "a"}] = true
	src.diffs[commitRef{1, "b"}] = []models.FileChange{{Additions: 5}}

	bucket := models.NewBucket()
	p := &models.Project{ID: 1}
	bucket.Add(p, &models.Commit{ID: "a"})
	bucket.Add(p, &models.Commit{ID: "b"})

	require.NoError(t, NewEnricher(src, EnrichOptions{}).Enrich(context.Background(), bucket))

	e, _ := bucket.Get(1)
	require.NotNil(t, e.Commits[0].Stats)
	assert.Equal(t, models.DiffStat{}, *e.Commits[0].Stats)
	assert.Equal(t, 5, e.Totals.Additions)
	assert.Nil(t, e.Commits[1].Links, "links only when asked for")
}

func TestEnrich_StopsOnCancel(t *testing.T) {
	src := newFakeSource()
	bucket := models.NewBucket()
	bucket.Add(&models.Project{ID: 1}, &models.Commit{ID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewEnricher(src, EnrichOptions{}).Enrich(ctx, bucket), context.Canceled)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, models.DiffStat{}, Summarize(nil))
}
