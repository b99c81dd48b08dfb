package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
)

// ErrNotFound is returned by Load when no list has been saved yet.
var ErrNotFound = errors.New("project list not found")

// List is the cached project listing for one GitLab instance.
type List struct {
	GitLabURL string                  `yaml:"gitlab_url" json:"gitlab_url"`
	FetchedAt time.Time               `yaml:"fetched_at" json:"fetched_at"`
	Projects  []models.ProjectSummary `yaml:"projects" json:"projects"`
}

type Store interface {
	Load(ctx context.Context) (*List, error)
	Save(ctx context.Context, list *List) error
}

// Lister is the remote call used to rebuild the list.
type Lister interface {
	ListProjects(ctx context.Context, opts gitlab.ListProjectsOptions) ([]models.ProjectSummary, error)
}

var _ Lister = (*gitlab.Client)(nil)

// Refresh fetches the project listing and saves it. A partial listing (an
// error after some pages) is not saved.
func Refresh(ctx context.Context, lister Lister, store Store, gitlabURL string, opts gitlab.ListProjectsOptions) (*List, error) {
	summaries, err := lister.ListProjects(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	list := &List{
		GitLabURL: gitlabURL,
		FetchedAt: time.Now().UTC(),
		Projects:  summaries,
	}
	if err := store.Save(ctx, list); err != nil {
		return nil, fmt.Errorf("save project list: %w", err)
	}
	return list, nil
}

// HostKey turns the instance URL into a file or key component.
func HostKey(gitlabURL string) string {
	host := gitlabURL
	if u, err := url.Parse(gitlabURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ReplaceAll(host, ":", "_")
	host = strings.ReplaceAll(host, "/", "_")
	if host == "" {
		return "default"
	}
	return host
}
