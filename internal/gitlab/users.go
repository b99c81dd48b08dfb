package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
)

// ListUsersOptions narrows the user listing. Both fields are optional.
type ListUsersOptions struct {
	Username string
	Search   string
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var raw apiUser
	if err := c.getJSON(ctx, "/users/"+strconv.FormatInt(id, 10), nil, &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var raw apiUser
	if err := c.getJSON(ctx, "/user", nil, &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

func (c *Client) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	query := url.Values{}
	if opts.Username != "" {
		query.Set("username", opts.Username)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}

	var users []*models.User
	err := paginate(ctx, c, "/users", query, c.limits.PerPage, c.limits.UserMaxPages, func(batch []apiUser) {
		for _, u := range batch {
			users = append(users, u.toModel())
		}
	})
	return users, err
}

// FindUser resolves a username to a user.
func (c *Client) FindUser(ctx context.Context, username string) (*models.User, error) {
	var batch []apiUser
	query := url.Values{"username": {username}}
	if err := c.getJSON(ctx, "/users", query, &batch); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Method: http.MethodGet, Path: "/users", Message: fmt.Sprintf("user %q not found", username)}
	}
	return batch[0].toModel(), nil
}
