package models

import "time"

const (
	DefaultDescription = "no description"
	DefaultVisibility  = "unknown"
	DefaultNamespace   = "Unknown"
	DefaultBranch      = "main"
	DefaultPushCount   = 1
	UnknownValue       = "unknown"
	EmailNotProvided   = "not provided"
)

func ApplyProjectDefaults(p *Project) {
	if p == nil {
		return
	}
	if p.Description == "" {
		p.Description = DefaultDescription
	}
	if p.Visibility == "" {
		p.Visibility = DefaultVisibility
	}
	if p.Namespace == "" {
		p.Namespace = DefaultNamespace
	}
	if p.NamespacePath == "" {
		p.NamespacePath = DefaultNamespace
	}
	if p.DefaultBranch == "" {
		p.DefaultBranch = DefaultBranch
	}
	if p.Path == "" {
		p.Path = p.Name
	}
	if p.PathWithNamespace == "" {
		p.PathWithNamespace = p.Namespace + "/" + p.Name
	}
}

// FormatTime renders a timestamp for reports, "unknown" when absent.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return UnknownValue
	}
	return t.UTC().Format(time.RFC3339)
}

func OrUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

func EmailOrNotProvided(s string) string {
	if s == "" {
		return EmailNotProvided
	}
	return s
}
