package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "gitlab.example.com"})
	assert.Error(t, err)
}

func TestClient_BaseURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://gitlab.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.example.com", c.BaseURL())
}

func TestClient_PrivateTokenHeader(t *testing.T) {
	var gotToken, gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, map[string]any{"id": 7, "username": "ana"})
	}), Options{Token: "glpat-123"})

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "glpat-123", gotToken)
	assert.Empty(t, gotAuth)
}

func TestClient_OAuthBearer(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, map[string]any{"id": 1})
	}), Options{Token: "abc", AuthMode: AuthOAuth})

	_, err := c.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 User Not Found"}`))
	}), Options{})

	_, err := c.GetUser(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "404 User Not Found", apiErr.Message)
	assert.Equal(t, "/users/99", apiErr.Path)
}

func TestClient_RateLimitRecorded(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("RateLimit-Limit", "2000")
		w.Header().Set("RateLimit-Remaining", "1999")
		w.Header().Set("RateLimit-Reset", "1700000000")
		writeJSON(w, map[string]any{"id": 1})
	}), Options{})

	_, ok := c.RateLimit()
	assert.False(t, ok)

	_, err := c.CurrentUser(context.Background())
	require.NoError(t, err)

	rate, ok := c.RateLimit()
	require.True(t, ok)
	assert.Equal(t, 2000, rate.Limit)
	assert.Equal(t, 1999, rate.Remaining)
	assert.Equal(t, int64(1700000000), rate.ResetAt.Unix())
}

func TestListUserEvents_FiltersPushAndStopsOnEmptyPage(t *testing.T) {
	var pages []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/users/5/events", r.URL.Path)
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("after"))
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			writeJSON(w, []map[string]any{
				{"id": 1, "project_id": 10, "action_name": "pushed to", "push_data": map[string]any{"commit_count": 2, "commit_to": "b"}},
				{"id": 2, "project_id": 11, "action_name": "commented on"},
			})
		case "2":
			writeJSON(w, []map[string]any{
				{"id": 3, "project_id": 12, "action_name": "pushed new", "push_data": map[string]any{"commit_to": "c"}},
			})
		default:
			writeJSON(w, []map[string]any{})
		}
	}), Options{})

	events, err := c.ListUserEvents(context.Background(), 5, EventOptions{After: "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
	assert.Equal(t, 2, events[0].Push.CommitCount)
	assert.Equal(t, 1, events[1].Push.CommitCount, "missing count defaults to one")
	assert.Equal(t, int64(12), events[1].ProjectID)
}

func TestListUserEvents_StopsAtPageCap(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, []map[string]any{
			{"id": calls, "project_id": 1, "action_name": "pushed to", "push_data": map[string]any{"commit_to": "x"}},
		})
	}), Options{Limits: Limits{EventMaxPages: 3}})

	events, err := c.ListUserEvents(context.Background(), 1, EventOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, events, 3)
}

func TestListCommits_ReturnsCollectedOnMidScanError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, []map[string]any{{"id": "aaaaaaaaaaaa", "author_email": "a@x.io"}})
	}), Options{})

	commits, err := c.ListCommits(context.Background(), 3, CommitListOptions{AuthorEmail: "a@x.io"})
	require.Error(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "aaaaaaaa", commits[0].ShortID)
}

func TestListCommits_Query(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, []map[string]any{})
	}), Options{})

	_, err := c.ListCommits(context.Background(), 3, CommitListOptions{
		RefName:  "a..b",
		Since:    "2024-01-01T00:00:00Z",
		All:      true,
		PerPage:  10,
		MaxPages: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "a..b", got["ref_name"])
	assert.Equal(t, "10", got["per_page"])
	assert.Equal(t, "true", got["all"])
	assert.Equal(t, "2024-01-01T00:00:00Z", got["since"])
	assert.NotContains(t, got, "author_email")
}

func TestGetProject_AppliesDefaults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("statistics"))
		writeJSON(w, map[string]any{
			"id":                  4,
			"name":                "api",
			"path_with_namespace": "backend/api",
			"description":         nil,
			"statistics":          map[string]any{"commit_count": 42, "repository_size": 1024},
		})
	}), Options{})

	p, err := c.GetProject(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "no description", p.Description)
	assert.Equal(t, "main", p.DefaultBranch)
	assert.Equal(t, "unknown", p.Visibility)
	assert.Equal(t, "Unknown", p.Namespace)
	assert.Equal(t, int64(42), p.Stats.CommitCount)
}

func TestGetCommitDiff_CountsLines(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []map[string]any{})
			return
		}
		writeJSON(w, []map[string]any{
			{"new_path": "a.go", "diff": "--- a/a.go\n+++ b/a.go\n@@ -1,2 +1,3 @@\n-old\n+new\n+more\n ctx"},
			{"new_path": "b.go", "diff": "+x", "additions": 7, "deletions": 3},
		})
	}), Options{})

	files, err := c.GetCommitDiff(context.Background(), 1, "abc")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 2, files[0].Additions)
	assert.Equal(t, 1, files[0].Deletions)
	assert.Equal(t, 7, files[1].Additions)
	assert.Equal(t, 3, files[1].Deletions)
}

func TestListUsers_PagesUntilEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 2 {
			writeJSON(w, []map[string]any{})
			return
		}
		writeJSON(w, []map[string]any{{"id": page, "username": fmt.Sprintf("u%d", page)}})
	}), Options{})

	users, err := c.ListUsers(context.Background(), ListUsersOptions{})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].Username)
}

func TestFindUser_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ghost", r.URL.Query().Get("username"))
		writeJSON(w, []map[string]any{})
	}), Options{})

	_, err := c.FindUser(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
}

func TestCountDiffLines(t *testing.T) {
	tests := []struct {
		name string
		diff string
		add  int
		del  int
	}{
		{name: "headers before hunk", diff: "--- a\n+++ b\n@@ -1 +1,2 @@\n+1\n+2\n-3\n 4", add: 2, del: 1},
		{name: "hunk only", diff: "@@ -1,3 +1,3 @@\n-- old sql comment\n+++i;\n context\n", add: 1, del: 1},
		{name: "markdown rules", diff: "@@ -1,2 +1,2 @@\n----\n+---\n+++---\n", add: 2, del: 1},
		{name: "second hunk", diff: "@@ -1 +1 @@\n-a\n+b\n@@ -9 +9 @@\n---x\n+++y\n", add: 2, del: 2},
		{name: "empty", diff: "", add: 0, del: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			add, del := CountDiffLines(tt.diff)
			assert.Equal(t, tt.add, add)
			assert.Equal(t, tt.del, del)
		})
	}
}
