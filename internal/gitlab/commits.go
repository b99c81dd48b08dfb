package gitlab

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
)

// CommitListOptions filters a project's commit listing. Zero values leave a
// filter unset; PerPage and MaxPages fall back to the client limits.
type CommitListOptions struct {
	RefName     string
	AuthorEmail string
	Since       string
	Until       string
	All         bool
	PerPage     int
	MaxPages    int
}

func (o CommitListOptions) query() url.Values {
	q := url.Values{}
	if o.RefName != "" {
		q.Set("ref_name", o.RefName)
	}
	if o.AuthorEmail != "" {
		q.Set("author_email", o.AuthorEmail)
	}
	if o.Since != "" {
		q.Set("since", o.Since)
	}
	if o.Until != "" {
		q.Set("until", o.Until)
	}
	if o.All {
		q.Set("all", "true")
	}
	return q
}

func commitsPath(projectID int64) string {
	return "/projects/" + strconv.FormatInt(projectID, 10) + "/repository/commits"
}

func (c *Client) ListCommits(ctx context.Context, projectID int64, opts CommitListOptions) ([]*models.Commit, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = c.limits.CommitMaxPages
	}

	var commits []*models.Commit
	err := paginate(ctx, c, commitsPath(projectID), opts.query(), opts.PerPage, maxPages, func(batch []apiCommit) {
		for _, raw := range batch {
			commits = append(commits, raw.toModel())
		}
	})
	return commits, err
}

func (c *Client) GetCommit(ctx context.Context, projectID int64, sha string) (*models.Commit, error) {
	var raw apiCommit
	if err := c.getJSON(ctx, commitsPath(projectID)+"/"+url.PathEscape(sha), nil, &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

// GetCommitDiff returns the per-file changes of a commit.
func (c *Client) GetCommitDiff(ctx context.Context, projectID int64, sha string) ([]models.FileChange, error) {
	var files []models.FileChange
	path := commitsPath(projectID) + "/" + url.PathEscape(sha) + "/diff"
	err := paginate(ctx, c, path, nil, c.limits.PerPage, c.limits.DiffMaxPages, func(batch []apiDiff) {
		for _, d := range batch {
			files = append(files, d.toModel())
		}
	})
	return files, err
}
