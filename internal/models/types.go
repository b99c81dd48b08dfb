package models

import (
	"strings"
	"time"
)

// Push actions kept at ingestion; every other event action is dropped.
const (
	ActionPushedTo  = "pushed to"
	ActionPushedNew = "pushed new"
)

type User struct {
	ID             int64
	Username       string
	Name           string
	Email          string
	PublicEmail    string
	State          string
	CreatedAt      time.Time
	LastActivityOn string
	WebURL         string
}

// KnownEmail is the address used to verify commit attribution. Empty means
// no email is known and push events are trusted as-is.
func (u *User) KnownEmail() string {
	if u == nil {
		return ""
	}
	if e := strings.TrimSpace(u.Email); e != "" {
		return e
	}
	return strings.TrimSpace(u.PublicEmail)
}

type PushData struct {
	Ref         string
	RefType     string
	Action      string
	CommitCount int
	CommitFrom  string
	CommitTo    string
	CommitTitle string
}

type Event struct {
	ID         int64
	ProjectID  int64
	ActionName string
	CreatedAt  time.Time
	Push       *PushData
}

func IsPushAction(action string) bool {
	return action == ActionPushedTo || action == ActionPushedNew
}

type ProjectStats struct {
	CommitCount    int64
	RepositorySize int64
}

// Project is the enriched project form fetched from the detail endpoint.
type Project struct {
	ID                int64
	Name              string
	Path              string
	PathWithNamespace string
	Namespace         string
	NamespacePath     string
	Description       string
	Visibility        string
	WebURL            string
	DefaultBranch     string
	CreatedAt         time.Time
	LastActivityAt    time.Time
	Stats             ProjectStats
}

// ProjectSummary is the listing form kept in the project-list cache.
type ProjectSummary struct {
	ID                int64     `yaml:"id" json:"id"`
	Name              string    `yaml:"name" json:"name"`
	Namespace         string    `yaml:"namespace" json:"namespace"`
	PathWithNamespace string    `yaml:"path_with_namespace" json:"path_with_namespace"`
	WebURL            string    `yaml:"web_url,omitempty" json:"web_url,omitempty"`
	LastActivityAt    time.Time `yaml:"last_activity_at" json:"last_activity_at"`
}

// Project widens a listing entry into the enriched shape, filling the
// fields the listing does not carry from the default table.
func (s ProjectSummary) Project() *Project {
	p := &Project{
		ID:                s.ID,
		Name:              s.Name,
		PathWithNamespace: s.PathWithNamespace,
		Namespace:         s.Namespace,
		WebURL:            s.WebURL,
		LastActivityAt:    s.LastActivityAt,
	}
	if idx := strings.LastIndex(s.PathWithNamespace, "/"); idx >= 0 {
		p.Path = s.PathWithNamespace[idx+1:]
		p.NamespacePath = s.PathWithNamespace[:idx]
	}
	ApplyProjectDefaults(p)
	return p
}

type DiffStat struct {
	FilesChanged int `json:"files_changed"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

func (d *DiffStat) Add(o DiffStat) {
	d.FilesChanged += o.FilesChanged
	d.Additions += o.Additions
	d.Deletions += o.Deletions
}

func (d DiffStat) Net() int {
	return d.Additions - d.Deletions
}

type FileChange struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
	Additions   int    `json:"additions"`
	Deletions   int    `json:"deletions"`
}

type Commit struct {
	ID             string
	ShortID        string
	Title          string
	Message        string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	AuthoredDate   time.Time
	CommittedDate  time.Time
	CreatedAt      time.Time
	WebURL         string
	ParentIDs      []string
	Stats          *DiffStat
	Files          []FileChange
	Links          []string
}

// DiffStats returns the attached stats, or zeros when enrichment did not run
// or the diff could not be fetched.
func (c *Commit) DiffStats() DiffStat {
	if c == nil || c.Stats == nil {
		return DiffStat{}
	}
	return *c.Stats
}

// CommitKey identifies a commit within one run. Hashes are only unique
// inside a project.
type CommitKey struct {
	ProjectID int64
	SHA       string
}

// TimeWindow holds normalized bounds; an empty bound is unbounded.
type TimeWindow struct {
	Since string
	Until string
}
