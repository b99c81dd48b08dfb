package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/projects"
	"go.uber.org/zap"
)

// ErrNoProjectList means the search path has no project list to scan. The
// list is never fetched on demand; refresh it first.
var ErrNoProjectList = errors.New("no project list available, run `labslurp projects` first")

type SearchOptions struct {
	// Projects is how many cached projects a plain search scans.
	Projects int
	// EnhancedProjects is the scan width of an enhanced search.
	EnhancedProjects int
	Logger           *zap.Logger
	Progress         io.Writer
}

// Searcher scans a bounded prefix of the cached project list for commits
// authored by an email address.
type Searcher struct {
	src      Source
	store    projects.Store
	plain    int
	enhanced int
	logger   *zap.Logger
	progress io.Writer
}

func NewSearcher(src Source, store projects.Store, opts SearchOptions) *Searcher {
	if opts.Projects <= 0 {
		opts.Projects = 10
	}
	if opts.EnhancedProjects <= 0 {
		opts.EnhancedProjects = 15
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Searcher{
		src:      src,
		store:    store,
		plain:    opts.Projects,
		enhanced: opts.EnhancedProjects,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// ByEmail fills a bucket with the commits whose author email matches. Only
// a missing project list fails the call; per-project failures are skipped.
func (s *Searcher) ByEmail(ctx context.Context, email string, window models.TimeWindow, enhanced bool) (*models.Bucket, error) {
	bucket := models.NewBucket()
	email = strings.TrimSpace(email)
	if email == "" {
		return bucket, fmt.Errorf("search: email is required")
	}

	list, err := s.store.Load(ctx)
	if errors.Is(err, projects.ErrNotFound) {
		s.logger.Warn("project list missing")
		return bucket, ErrNoProjectList
	}
	if err != nil {
		s.logger.Warn("load project list failed", zap.Error(err))
		return bucket, fmt.Errorf("%w: %w", ErrNoProjectList, err)
	}
	if len(list.Projects) == 0 {
		return bucket, ErrNoProjectList
	}

	limit := s.plain
	if enhanced {
		limit = s.enhanced
	}
	scan := list.Projects
	if len(scan) > limit {
		scan = scan[:limit]
	}

	bar := newProgress(s.progress, len(scan), "[cyan]Searching projects[reset]")
	for _, summary := range scan {
		if ctx.Err() != nil {
			break
		}
		s.scanProject(ctx, bucket, summary, email, window, enhanced)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return bucket, ctx.Err()
}

func (s *Searcher) scanProject(ctx context.Context, bucket *models.Bucket, summary models.ProjectSummary, email string, window models.TimeWindow, enhanced bool) {
	hits, err := s.src.ListCommits(ctx, summary.ID, gitlab.CommitListOptions{
		AuthorEmail: email,
		Since:       window.Since,
		Until:       window.Until,
	})
	if err != nil {
		s.logger.Warn("search project failed",
			zap.Int64("project_id", summary.ID), zap.String("project", summary.Name), zap.Error(err))
	}
	if len(hits) == 0 {
		return
	}

	project := summary.Project()
	if enhanced {
		if detail, err := s.src.GetProject(ctx, summary.ID); err == nil {
			project = detail
		} else {
			s.logger.Warn("fetch project failed, using listing",
				zap.Int64("project_id", summary.ID), zap.Error(err))
		}
	}

	for _, hit := range hits {
		if hit.ID == "" || bucket.Seen(project.ID, hit.ID) {
			continue
		}
		commit, err := s.src.GetCommit(ctx, project.ID, hit.ID)
		if err != nil {
			s.logger.Warn("fetch commit failed",
				zap.Int64("project_id", project.ID), zap.String("sha", hit.ID), zap.Error(err))
			continue
		}
		if commit.ID == "" {
			commit.ID = hit.ID
		}
		bucket.Add(project, commit)
	}
}
