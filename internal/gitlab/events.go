package gitlab

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
)

// EventOptions bounds the activity feed. After and Before take the
// normalized window timestamps; empty means unbounded.
type EventOptions struct {
	After  string
	Before string
}

// ListUserEvents returns the user's push events in feed order. Every other
// action is dropped as the pages are decoded.
func (c *Client) ListUserEvents(ctx context.Context, userID int64, opts EventOptions) ([]models.Event, error) {
	query := url.Values{}
	if opts.After != "" {
		query.Set("after", opts.After)
	}
	if opts.Before != "" {
		query.Set("before", opts.Before)
	}

	var events []models.Event
	path := "/users/" + strconv.FormatInt(userID, 10) + "/events"
	err := paginate(ctx, c, path, query, c.limits.PerPage, c.limits.EventMaxPages, func(batch []apiEvent) {
		for _, raw := range batch {
			event := raw.toModel()
			if !models.IsPushAction(event.ActionName) {
				continue
			}
			events = append(events, event)
		}
	})
	return events, err
}
