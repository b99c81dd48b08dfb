package gitlab

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
)

type ListProjectsOptions struct {
	// Membership limits the listing to projects the token's user belongs to.
	Membership bool
}

// GetProject fetches the enriched project detail including statistics.
func (c *Client) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var raw apiProject
	query := url.Values{"statistics": {"true"}}
	if err := c.getJSON(ctx, "/projects/"+strconv.FormatInt(id, 10), query, &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

// ListProjects returns the listing projection, most recently active first.
func (c *Client) ListProjects(ctx context.Context, opts ListProjectsOptions) ([]models.ProjectSummary, error) {
	query := url.Values{
		"simple":   {"true"},
		"order_by": {"last_activity_at"},
	}
	if opts.Membership {
		query.Set("membership", "true")
	}

	var out []models.ProjectSummary
	err := paginate(ctx, c, "/projects", query, c.limits.PerPage, c.limits.ProjectMaxPages, func(batch []apiProject) {
		for _, p := range batch {
			out = append(out, p.toSummary())
		}
	})
	return out, err
}
