package display

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
)

type jsonTimeRange struct {
	Since *string `json:"since"`
	Until *string `json:"until"`
}

type jsonExportInfo struct {
	ExportTime string        `json:"export_time"`
	RunID      string        `json:"run_id"`
	GitLabURL  string        `json:"gitlab_url"`
	ExportType string        `json:"export_type"`
	UserID     int64         `json:"user_id,omitempty"`
	Email      string        `json:"email,omitempty"`
	TimeRange  jsonTimeRange `json:"time_range"`
}

type jsonUser struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PublicEmail    string `json:"public_email,omitempty"`
	State          string `json:"state"`
	CreatedAt      string `json:"created_at"`
	LastActivityOn string `json:"last_activity_on"`
	WebURL         string `json:"web_url"`
}

type jsonProjectInfo struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	Namespace         string `json:"namespace"`
	NamespacePath     string `json:"namespace_path"`
	Description       string `json:"description"`
	Visibility        string `json:"visibility"`
	WebURL            string `json:"web_url"`
	CreatedAt         string `json:"created_at"`
	LastActivityAt    string `json:"last_activity_at"`
	DefaultBranch     string `json:"default_branch"`
	CommitCount       int64  `json:"commit_count"`
	RepositorySize    int64  `json:"repository_size"`
}

type jsonCommit struct {
	ID             string              `json:"id"`
	ShortID        string              `json:"short_id"`
	Title          string              `json:"title"`
	Message        string              `json:"message"`
	AuthorName     string              `json:"author_name"`
	AuthorEmail    string              `json:"author_email"`
	AuthoredDate   string              `json:"authored_date"`
	CommitterName  string              `json:"committer_name"`
	CommitterEmail string              `json:"committer_email"`
	CommittedDate  string              `json:"committed_date"`
	CreatedAt      string              `json:"created_at"`
	WebURL         string              `json:"web_url"`
	ParentIDs      []string            `json:"parent_ids"`
	Stats          models.DiffStat     `json:"stats"`
	FileChanges    []models.FileChange `json:"file_changes"`
	Links          []string            `json:"links,omitempty"`
}

type jsonProject struct {
	ProjectInfo  jsonProjectInfo `json:"project_info"`
	CommitsCount int             `json:"commits_count"`
	Stats        models.DiffStat `json:"stats"`
	Commits      []jsonCommit    `json:"commits"`
}

type jsonSummary struct {
	TotalCommits  int `json:"total_commits"`
	TotalProjects int `json:"total_projects"`
	FilesChanged  int `json:"files_changed"`
	Additions     int `json:"additions"`
	Deletions     int `json:"deletions"`
}

type jsonExport struct {
	ExportInfo jsonExportInfo `json:"export_info"`
	UserInfo   *jsonUser      `json:"user_info,omitempty"`
	Projects   []jsonProject  `json:"projects"`
	Summary    jsonSummary    `json:"summary"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toJSONUser(u *models.User) *jsonUser {
	if u == nil {
		return nil
	}
	return &jsonUser{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          models.EmailOrNotProvided(u.KnownEmail()),
		PublicEmail:    u.PublicEmail,
		State:          models.OrUnknown(u.State),
		CreatedAt:      models.FormatTime(u.CreatedAt),
		LastActivityOn: models.OrUnknown(u.LastActivityOn),
		WebURL:         u.WebURL,
	}
}

func toJSONProjectInfo(p *models.Project) jsonProjectInfo {
	return jsonProjectInfo{
		ID:                p.ID,
		Name:              p.Name,
		Path:              p.Path,
		PathWithNamespace: p.PathWithNamespace,
		Namespace:         p.Namespace,
		NamespacePath:     p.NamespacePath,
		Description:       p.Description,
		Visibility:        p.Visibility,
		WebURL:            p.WebURL,
		CreatedAt:         models.FormatTime(p.CreatedAt),
		LastActivityAt:    models.FormatTime(p.LastActivityAt),
		DefaultBranch:     p.DefaultBranch,
		CommitCount:       p.Stats.CommitCount,
		RepositorySize:    p.Stats.RepositorySize,
	}
}

func toJSONCommit(c *models.Commit) jsonCommit {
	files := c.Files
	if files == nil {
		files = []models.FileChange{}
	}
	parents := c.ParentIDs
	if parents == nil {
		parents = []string{}
	}
	return jsonCommit{
		ID:             c.ID,
		ShortID:        c.ShortID,
		Title:          c.Title,
		Message:        c.Message,
		AuthorName:     c.AuthorName,
		AuthorEmail:    c.AuthorEmail,
		AuthoredDate:   models.FormatTime(c.AuthoredDate),
		CommitterName:  c.CommitterName,
		CommitterEmail: c.CommitterEmail,
		CommittedDate:  models.FormatTime(c.CommittedDate),
		CreatedAt:      models.FormatTime(c.CreatedAt),
		WebURL:         c.WebURL,
		ParentIDs:      parents,
		Stats:          c.DiffStats(),
		FileChanges:    files,
		Links:          c.Links,
	}
}

func buildJSON(e *Export) jsonExport {
	out := jsonExport{
		ExportInfo: jsonExportInfo{
			ExportTime: e.ExportTime.Format("2006-01-02T15:04:05Z07:00"),
			RunID:      e.RunID,
			GitLabURL:  e.GitLabURL,
			ExportType: e.ExportType(),
			UserID:     e.UserID(),
			Email:      e.Email,
			TimeRange:  jsonTimeRange{Since: optional(e.Window.Since), Until: optional(e.Window.Until)},
		},
		UserInfo: toJSONUser(e.User),
		Projects: make([]jsonProject, 0, e.Bucket.Len()),
	}

	for _, entry := range e.Bucket.Projects() {
		commits := entry.SortedCommits()
		project := jsonProject{
			ProjectInfo:  toJSONProjectInfo(entry.Project),
			CommitsCount: len(commits),
			Stats:        entry.Totals,
			Commits:      make([]jsonCommit, 0, len(commits)),
		}
		for _, c := range commits {
			project.Commits = append(project.Commits, toJSONCommit(c))
		}
		out.Projects = append(out.Projects, project)
	}

	totals := e.Bucket.Totals()
	out.Summary = jsonSummary{
		TotalCommits:  e.Bucket.TotalCommits(),
		TotalProjects: e.Bucket.Len(),
		FilesChanged:  totals.FilesChanged,
		Additions:     totals.Additions,
		Deletions:     totals.Deletions,
	}
	return out
}

// WriteJSON writes the structured export, indented.
func WriteJSON(w io.Writer, e *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(buildJSON(e)); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// CSVHeader is the fixed column set of the tabular export.
var CSVHeader = []string{
	"project_id",
	"project_name",
	"project_path",
	"project_full_path",
	"project_namespace",
	"project_namespace_path",
	"project_description",
	"project_visibility",
	"project_web_url",
	"project_created_at",
	"project_default_branch",
	"project_total_commits",
	"project_repository_size",
	"commit_id",
	"commit_short_id",
	"commit_title",
	"commit_message",
	"author_name",
	"author_email",
	"committer_name",
	"committer_email",
	"created_at",
	"committed_date",
	"files_changed",
	"additions",
	"deletions",
	"commit_web_url",
}

const utf8BOM = "\ufeff"

// WriteCSV writes one row per commit, prefixed with a UTF-8 BOM so
// spreadsheet tools pick the right encoding.
func WriteCSV(w io.Writer, e *Export) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range e.Bucket.Projects() {
		p := entry.Project
		for _, c := range entry.SortedCommits() {
			stats := c.DiffStats()
			row := []string{
				strconv.FormatInt(p.ID, 10),
				p.Name,
				p.Path,
				p.PathWithNamespace,
				p.Namespace,
				p.NamespacePath,
				p.Description,
				p.Visibility,
				p.WebURL,
				models.FormatTime(p.CreatedAt),
				p.DefaultBranch,
				strconv.FormatInt(p.Stats.CommitCount, 10),
				strconv.FormatInt(p.Stats.RepositorySize, 10),
				c.ID,
				c.ShortID,
				c.Title,
				c.Message,
				c.AuthorName,
				c.AuthorEmail,
				c.CommitterName,
				c.CommitterEmail,
				models.FormatTime(c.CreatedAt),
				models.FormatTime(c.CommittedDate),
				strconv.Itoa(stats.FilesChanged),
				strconv.Itoa(stats.Additions),
				strconv.Itoa(stats.Deletions),
				c.WebURL,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
