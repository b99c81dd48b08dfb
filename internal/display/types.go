package display

import (
	"time"

	"github.com/gnomegl/labslurp/internal/models"
	"github.com/google/uuid"
)

// ExportKind selects the naming scheme and the export_type label.
type ExportKind int

const (
	KindUser ExportKind = iota
	KindCurrentUser
	KindEmail
)

// Export is everything a renderer needs: the bucket plus who, when and how.
type Export struct {
	Kind       ExportKind
	RunID      string
	ExportTime time.Time
	GitLabURL  string
	// User is nil for an email search.
	User     *models.User
	Email    string
	Enhanced bool
	Window   models.TimeWindow
	Bucket   *models.Bucket
}

func NewExport(kind ExportKind, gitlabURL string, window models.TimeWindow, bucket *models.Bucket) *Export {
	if bucket == nil {
		bucket = models.NewBucket()
	}
	return &Export{
		Kind:       kind,
		RunID:      uuid.NewString(),
		ExportTime: time.Now(),
		GitLabURL:  gitlabURL,
		Window:     window,
		Bucket:     bucket,
	}
}

func (e *Export) ExportType() string {
	switch e.Kind {
	case KindCurrentUser:
		return "current_user_commits"
	case KindEmail:
		if e.Enhanced {
			return "email_search_enhanced"
		}
		return "email_search"
	default:
		return "user_commits_direct"
	}
}

// Method describes how the commits were discovered.
func (e *Export) Method() string {
	if e.Kind == KindEmail {
		if e.Enhanced {
			return "Email search across cached projects (enhanced)"
		}
		return "Email search across cached projects"
	}
	return "User activity events"
}

func (e *Export) UserID() int64 {
	if e.User == nil {
		return 0
	}
	return e.User.ID
}
