package gitlab

// Limits bounds paging against unbounded remote collections.
type Limits struct {
	PerPage        int
	EventMaxPages  int
	CommitMaxPages int
	UserMaxPages   int
	// ProjectMaxPages bounds the project listing used to refresh the cache.
	ProjectMaxPages int
	DiffMaxPages    int
}

// DefaultLimits returns the default paging limits
func DefaultLimits() Limits {
	return Limits{
		PerPage:         100,
		EventMaxPages:   20,
		CommitMaxPages:  100,
		UserMaxPages:    20,
		ProjectMaxPages: 100,
		DiffMaxPages:    20,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.PerPage <= 0 {
		l.PerPage = d.PerPage
	}
	if l.EventMaxPages <= 0 {
		l.EventMaxPages = d.EventMaxPages
	}
	if l.CommitMaxPages <= 0 {
		l.CommitMaxPages = d.CommitMaxPages
	}
	if l.UserMaxPages <= 0 {
		l.UserMaxPages = d.UserMaxPages
	}
	if l.ProjectMaxPages <= 0 {
		l.ProjectMaxPages = d.ProjectMaxPages
	}
	if l.DiffMaxPages <= 0 {
		l.DiffMaxPages = d.DiffMaxPages
	}
	return l
}
