package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/projects"
)

var errFake = errors.New("fake remote failure")

type commitRef struct {
	project int64
	sha     string
}

// fakeSource serves canned data and counts calls.
type fakeSource struct {
	users    map[int64]*models.User
	projects map[int64]*models.Project
	events   []models.Event
	commits  map[commitRef]*models.Commit
	// ranges maps "project:from..to" to the listed shas.
	ranges  map[string][]string
	byEmail map[int64][]string
	diffs   map[commitRef][]models.FileChange

	failProjects map[int64]bool
	failCommits  map[commitRef]bool
	failDiffs    map[commitRef]bool
	failListing  map[int64]bool

	userCalls    int
	projectCalls map[int64]int
	commitCalls  int
	rangeQueries []gitlab.CommitListOptions
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		users:        map[int64]*models.User{},
		projects:     map[int64]*models.Project{},
		commits:      map[commitRef]*models.Commit{},
		ranges:       map[string][]string{},
		byEmail:      map[int64][]string{},
		diffs:        map[commitRef][]models.FileChange{},
		failProjects: map[int64]bool{},
		failCommits:  map[commitRef]bool{},
		failDiffs:    map[commitRef]bool{},
		failListing:  map[int64]bool{},
		projectCalls: map[int64]int{},
	}
}

func (f *fakeSource) addProject(id int64, name string) {
	f.projects[id] = &models.Project{ID: id, Name: name}
}

func (f *fakeSource) addCommit(project int64, sha, email string) {
	f.commits[commitRef{project, sha}] = &models.Commit{ID: sha, AuthorEmail: email, CommitterEmail: email}
}

func (f *fakeSource) push(project int64, count int, from, to string) {
	f.events = append(f.events, models.Event{
		ID:         int64(len(f.events) + 1),
		ProjectID:  project,
		ActionName: models.ActionPushedTo,
		Push:       &models.PushData{CommitCount: count, CommitFrom: from, CommitTo: to},
	})
}

func (f *fakeSource) GetUser(_ context.Context, id int64) (*models.User, error) {
	f.userCalls++
	u, ok := f.users[id]
	if !ok {
		return nil, &gitlab.APIError{StatusCode: 404, Method: "GET", Path: fmt.Sprintf("/users/%d", id)}
	}
	return u, nil
}

func (f *fakeSource) GetProject(_ context.Context, id int64) (*models.Project, error) {
	f.projectCalls[id]++
	if f.failProjects[id] {
		return nil, errFake
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, &gitlab.APIError{StatusCode: 404}
	}
	return p, nil
}

// ListUserEvents mirrors the client: only push actions come back.
func (f *fakeSource) ListUserEvents(context.Context, int64, gitlab.EventOptions) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.events {
		if models.IsPushAction(e.ActionName) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSource) ListCommits(_ context.Context, projectID int64, opts gitlab.CommitListOptions) ([]*models.Commit, error) {
	if f.failListing[projectID] {
		return nil, errFake
	}
	var shas []string
	if opts.RefName != "" {
		f.rangeQueries = append(f.rangeQueries, opts)
		shas = f.ranges[fmt.Sprintf("%d:%s", projectID, opts.RefName)]
		if opts.PerPage > 0 && len(shas) > opts.PerPage {
			shas = shas[:opts.PerPage]
		}
	} else {
		shas = f.byEmail[projectID]
	}

	out := make([]*models.Commit, 0, len(shas))
	for _, sha := range shas {
		c, ok := f.commits[commitRef{projectID, sha}]
		if !ok {
			c = &models.Commit{ID: sha}
		}
		if opts.AuthorEmail != "" && !strings.EqualFold(c.AuthorEmail, opts.AuthorEmail) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSource) GetCommit(_ context.Context, projectID int64, sha string) (*models.Commit, error) {
	f.commitCalls++
	ref := commitRef{projectID, sha}
	if f.failCommits[ref] {
		return nil, errFake
	}
	c, ok := f.commits[ref]
	if !ok {
		return nil, &gitlab.APIError{StatusCode: 404}
	}
	copied := *c
	return &copied, nil
}

func (f *fakeSource) GetCommitDiff(_ context.Context, projectID int64, sha string) ([]models.FileChange, error) {
	ref := commitRef{projectID, sha}
	if f.failDiffs[ref] {
		return nil, errFake
	}
	return f.diffs[ref], nil
}

type memStore struct {
	list *projects.List
	err  error
}

func (m *memStore) Load(context.Context) (*projects.List, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.list == nil {
		return nil, projects.ErrNotFound
	}
	return m.list, nil
}

func (m *memStore) Save(_ context.Context, list *projects.List) error {
	m.list = list
	return nil
}

func shas(pc *models.ProjectCommits) []string {
	out := make([]string, 0, len(pc.Commits))
	for _, c := range pc.Commits {
		out = append(out, c.ID)
	}
	return out
}
