package discovery

import (
	"context"
	"io"

	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/scanner"
	"go.uber.org/zap"
)

type EnrichOptions struct {
	// Links extracts URLs from commit messages.
	Links    bool
	Logger   *zap.Logger
	Progress io.Writer
}

// Enricher attaches diff statistics to every commit in a bucket and sums
// them per project.
type Enricher struct {
	src      Source
	links    bool
	logger   *zap.Logger
	progress io.Writer
}

func NewEnricher(src Source, opts EnrichOptions) *Enricher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Enricher{src: src, links: opts.Links, logger: opts.Logger, progress: opts.Progress}
}

// Enrich never fails the run: a commit whose diff cannot be fetched gets
// zero stats. It stops early only when ctx is done.
func (e *Enricher) Enrich(ctx context.Context, bucket *models.Bucket) error {
	bar := newProgress(e.progress, bucket.TotalCommits(), "[cyan]Computing diff stats[reset]")
	defer func() { _ = bar.Finish() }()

	for _, entry := range bucket.Projects() {
		entry.Totals = models.DiffStat{}
		for _, commit := range entry.Commits {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats := e.diffStats(ctx, entry.Project.ID, commit)
			commit.Stats = &stats
			entry.Totals.Add(stats)
			if e.links {
				commit.Links = scanner.ExtractLinks(commit.Message)
			}
			_ = bar.Add(1)
		}
	}
	return nil
}

func (e *Enricher) diffStats(ctx context.Context, projectID int64, commit *models.Commit) models.DiffStat {
	files, err := e.src.GetCommitDiff(ctx, projectID, commit.ID)
	if err != nil {
		e.logger.Warn("fetch diff failed",
			zap.Int64("project_id", projectID), zap.String("sha", commit.ID), zap.Error(err))
		commit.Files = nil
		return models.DiffStat{}
	}
	commit.Files = files
	return Summarize(files)
}

// Summarize reduces per-file changes to one DiffStat.
func Summarize(files []models.FileChange) models.DiffStat {
	stats := models.DiffStat{FilesChanged: len(files)}
	for _, f := range files {
		stats.Additions += f.Additions
		stats.Deletions += f.Deletions
	}
	return stats
}
