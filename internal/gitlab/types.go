package gitlab

import (
	"strings"
	"time"

	"github.com/gnomegl/labslurp/internal/models"
)

// Raw API records. Optional fields are pointers so absence can be told apart
// from zero values; defaults are applied in the to* conversions only.

type apiUser struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Email          *string    `json:"email"`
	PublicEmail    *string    `json:"public_email"`
	State          *string    `json:"state"`
	CreatedAt      *time.Time `json:"created_at"`
	LastActivityOn *string    `json:"last_activity_on"`
	WebURL         *string    `json:"web_url"`
}

type apiPushData struct {
	CommitCount *int    `json:"commit_count"`
	Action      *string `json:"action"`
	RefType     *string `json:"ref_type"`
	CommitFrom  *string `json:"commit_from"`
	CommitTo    *string `json:"commit_to"`
	Ref         *string `json:"ref"`
	CommitTitle *string `json:"commit_title"`
}

type apiEvent struct {
	ID         int64        `json:"id"`
	ProjectID  *int64       `json:"project_id"`
	ActionName string       `json:"action_name"`
	CreatedAt  *time.Time   `json:"created_at"`
	PushData   *apiPushData `json:"push_data"`
}

type apiNamespace struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type apiStatistics struct {
	CommitCount    int64 `json:"commit_count"`
	RepositorySize int64 `json:"repository_size"`
}

type apiProject struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	Path              string         `json:"path"`
	PathWithNamespace string         `json:"path_with_namespace"`
	Namespace         *apiNamespace  `json:"namespace"`
	Description       *string        `json:"description"`
	Visibility        *string        `json:"visibility"`
	WebURL            *string        `json:"web_url"`
	DefaultBranch     *string        `json:"default_branch"`
	CreatedAt         *time.Time     `json:"created_at"`
	LastActivityAt    *time.Time     `json:"last_activity_at"`
	Statistics        *apiStatistics `json:"statistics"`
}

type apiCommit struct {
	ID             string     `json:"id"`
	ShortID        string     `json:"short_id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	AuthorName     string     `json:"author_name"`
	AuthorEmail    string     `json:"author_email"`
	AuthoredDate   *time.Time `json:"authored_date"`
	CommitterName  string     `json:"committer_name"`
	CommitterEmail string     `json:"committer_email"`
	CommittedDate  *time.Time `json:"committed_date"`
	CreatedAt      *time.Time `json:"created_at"`
	WebURL         *string    `json:"web_url"`
	ParentIDs      []string   `json:"parent_ids"`
}

type apiDiff struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	Diff        string `json:"diff"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
	Additions   *int   `json:"additions"`
	Deletions   *int   `json:"deletions"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func tm(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

func (u apiUser) toModel() *models.User {
	return &models.User{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          str(u.Email),
		PublicEmail:    str(u.PublicEmail),
		State:          str(u.State),
		CreatedAt:      tm(u.CreatedAt),
		LastActivityOn: str(u.LastActivityOn),
		WebURL:         str(u.WebURL),
	}
}

func (e apiEvent) toModel() models.Event {
	event := models.Event{
		ID:         e.ID,
		ActionName: e.ActionName,
		CreatedAt:  tm(e.CreatedAt),
	}
	if e.ProjectID != nil {
		event.ProjectID = *e.ProjectID
	}
	if e.PushData != nil {
		push := &models.PushData{
			Ref:         str(e.PushData.Ref),
			RefType:     str(e.PushData.RefType),
			Action:      str(e.PushData.Action),
			CommitCount: models.DefaultPushCount,
			CommitFrom:  str(e.PushData.CommitFrom),
			CommitTo:    str(e.PushData.CommitTo),
			CommitTitle: str(e.PushData.CommitTitle),
		}
		if e.PushData.CommitCount != nil {
			push.CommitCount = *e.PushData.CommitCount
		}
		event.Push = push
	}
	return event
}

func (p apiProject) toModel() *models.Project {
	project := &models.Project{
		ID:                p.ID,
		Name:              p.Name,
		Path:              p.Path,
		PathWithNamespace: p.PathWithNamespace,
		Description:       strings.TrimSpace(str(p.Description)),
		Visibility:        str(p.Visibility),
		WebURL:            str(p.WebURL),
		DefaultBranch:     str(p.DefaultBranch),
		CreatedAt:         tm(p.CreatedAt),
		LastActivityAt:    tm(p.LastActivityAt),
	}
	if p.Namespace != nil {
		project.Namespace = p.Namespace.Name
		project.NamespacePath = p.Namespace.Path
	}
	if p.Statistics != nil {
		project.Stats = models.ProjectStats{
			CommitCount:    p.Statistics.CommitCount,
			RepositorySize: p.Statistics.RepositorySize,
		}
	}
	models.ApplyProjectDefaults(project)
	return project
}

func (p apiProject) toSummary() models.ProjectSummary {
	summary := models.ProjectSummary{
		ID:                p.ID,
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		WebURL:            str(p.WebURL),
		LastActivityAt:    tm(p.LastActivityAt),
		Namespace:         models.DefaultNamespace,
	}
	if p.Namespace != nil && p.Namespace.Name != "" {
		summary.Namespace = p.Namespace.Name
	}
	return summary
}

func (c apiCommit) toModel() *models.Commit {
	commit := &models.Commit{
		ID:             c.ID,
		ShortID:        c.ShortID,
		Title:          c.Title,
		Message:        c.Message,
		AuthorName:     c.AuthorName,
		AuthorEmail:    c.AuthorEmail,
		CommitterName:  c.CommitterName,
		CommitterEmail: c.CommitterEmail,
		AuthoredDate:   tm(c.AuthoredDate),
		CommittedDate:  tm(c.CommittedDate),
		CreatedAt:      tm(c.CreatedAt),
		WebURL:         str(c.WebURL),
		ParentIDs:      c.ParentIDs,
	}
	if commit.ShortID == "" && len(commit.ID) >= 8 {
		commit.ShortID = commit.ID[:8]
	}
	return commit
}

func (d apiDiff) toModel() models.FileChange {
	change := models.FileChange{
		OldPath:     d.OldPath,
		NewPath:     d.NewPath,
		NewFile:     d.NewFile,
		RenamedFile: d.RenamedFile,
		DeletedFile: d.DeletedFile,
	}
	added, deleted := CountDiffLines(d.Diff)
	change.Additions, change.Deletions = added, deleted
	if d.Additions != nil {
		change.Additions = *d.Additions
	}
	if d.Deletions != nil {
		change.Deletions = *d.Deletions
	}
	return change
}

// CountDiffLines counts added and removed lines in a unified diff body.
// ---/+++ lines are file headers only before the first @@ hunk; inside a
// hunk they are content.
func CountDiffLines(diff string) (additions, deletions int) {
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")):
			continue
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
