package discovery

import (
	"context"
	"io"

	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Source is the slice of the remote API the discovery paths read from.
// *gitlab.Client satisfies it.
type Source interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListUserEvents(ctx context.Context, userID int64, opts gitlab.EventOptions) ([]models.Event, error)
	ListCommits(ctx context.Context, projectID int64, opts gitlab.CommitListOptions) ([]*models.Commit, error)
	GetCommit(ctx context.Context, projectID int64, sha string) (*models.Commit, error)
	GetCommitDiff(ctx context.Context, projectID int64, sha string) ([]models.FileChange, error)
}

var _ Source = (*gitlab.Client)(nil)

func newProgress(w io.Writer, max int, description string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(max,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]#[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: "[white].[reset]",
			BarStart:      "[blue]|[reset]",
			BarEnd:        "[blue]|[reset]",
		}))
}
