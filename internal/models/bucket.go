package models

import "sort"

// ProjectCommits is one bucket entry: project metadata plus the commits
// attributed to the user in that project.
type ProjectCommits struct {
	Project *Project
	Commits []*Commit
	Totals  DiffStat
}

// SortedCommits returns the commits newest first by committed date without
// touching the insertion order held by the bucket.
func (pc *ProjectCommits) SortedCommits() []*Commit {
	out := make([]*Commit, len(pc.Commits))
	copy(out, pc.Commits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CommittedDate.After(out[j].CommittedDate)
	})
	return out
}

// Bucket maps project id to its commits, keeping first-encountered order.
// Entries only exist once a commit has been added to them.
type Bucket struct {
	order   []int64
	entries map[int64]*ProjectCommits
	seen    map[CommitKey]struct{}
}

func NewBucket() *Bucket {
	return &Bucket{
		entries: make(map[int64]*ProjectCommits),
		seen:    make(map[CommitKey]struct{}),
	}
}

// Seen reports whether the (project, sha) pair is already recorded.
func (b *Bucket) Seen(projectID int64, sha string) bool {
	_, ok := b.seen[CommitKey{ProjectID: projectID, SHA: sha}]
	return ok
}

// Add records a commit under the project, creating the entry on first use.
// It returns false and leaves the bucket unchanged when the pair is known.
func (b *Bucket) Add(project *Project, commit *Commit) bool {
	if project == nil || commit == nil || commit.ID == "" {
		return false
	}
	key := CommitKey{ProjectID: project.ID, SHA: commit.ID}
	if _, ok := b.seen[key]; ok {
		return false
	}

	entry, ok := b.entries[project.ID]
	if !ok {
		entry = &ProjectCommits{Project: project}
		b.entries[project.ID] = entry
		b.order = append(b.order, project.ID)
	}
	entry.Commits = append(entry.Commits, commit)
	b.seen[key] = struct{}{}
	return true
}

func (b *Bucket) Get(projectID int64) (*ProjectCommits, bool) {
	entry, ok := b.entries[projectID]
	return entry, ok
}

// Projects returns the entries in first-encountered order.
func (b *Bucket) Projects() []*ProjectCommits {
	out := make([]*ProjectCommits, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entries[id])
	}
	return out
}

func (b *Bucket) Len() int {
	return len(b.order)
}

func (b *Bucket) TotalCommits() int {
	return len(b.seen)
}

// Totals sums the per-project rollups.
func (b *Bucket) Totals() DiffStat {
	var total DiffStat
	for _, id := range b.order {
		total.Add(b.entries[id].Totals)
	}
	return total
}
