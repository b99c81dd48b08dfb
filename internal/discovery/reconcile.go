package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"go.uber.org/zap"
)

const zeroSHA = "0000000000000000000000000000000000000000"

type EngineOptions struct {
	// RangeCap bounds the commits listed per range expansion.
	RangeCap int
	// LowResultThreshold sets Result.Advisory when fewer commits are found.
	LowResultThreshold int
	Logger             *zap.Logger
	Progress           io.Writer
}

// Engine turns a user's push events into a deduplicated per-project bucket
// of commits attributed to that user.
type Engine struct {
	src       Source
	rangeCap  int
	threshold int
	logger    *zap.Logger
	progress  io.Writer
}

type Result struct {
	User            *models.User
	Bucket          *models.Bucket
	EventsProcessed int
	// Advisory is set when few commits were found for a user with a known
	// email; the email search path may reach further back.
	Advisory bool
}

func NewEngine(src Source, opts EngineOptions) *Engine {
	if opts.RangeCap <= 0 {
		opts.RangeCap = 10
	}
	if opts.LowResultThreshold <= 0 {
		opts.LowResultThreshold = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		src:       src,
		rangeCap:  opts.RangeCap,
		threshold: opts.LowResultThreshold,
		logger:    opts.Logger,
		progress:  opts.Progress,
	}
}

// run holds the per-invocation state. Nothing survives between calls.
type run struct {
	user     *models.User
	bucket   *models.Bucket
	projects map[int64]*models.Project
	failed   map[int64]bool
}

// Reconcile resolves the user and walks their push events inside window.
// A failed user lookup returns an empty result with the error; every later
// failure is logged and skipped.
func (e *Engine) Reconcile(ctx context.Context, userID int64, window models.TimeWindow) (*Result, error) {
	user, err := e.src.GetUser(ctx, userID)
	if err != nil {
		e.logger.Warn("resolve user failed", zap.Int64("user_id", userID), zap.Error(err))
		return &Result{Bucket: models.NewBucket()}, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	return e.ReconcileUser(ctx, user, window)
}

// ReconcileUser is Reconcile for a user the caller already holds, such as
// the token owner from GET /user, whose private email is visible there but
// not on GET /users/:id.
func (e *Engine) ReconcileUser(ctx context.Context, user *models.User, window models.TimeWindow) (*Result, error) {
	result := &Result{Bucket: models.NewBucket()}
	if user == nil {
		return result, errors.New("reconcile: user is required")
	}
	result.User = user

	events, err := e.src.ListUserEvents(ctx, user.ID, gitlab.EventOptions{After: window.Since, Before: window.Until})
	if err != nil {
		e.logger.Warn("event feed incomplete", zap.Int64("user_id", user.ID), zap.Int("events", len(events)), zap.Error(err))
	}

	r := &run{
		user:     user,
		bucket:   result.Bucket,
		projects: make(map[int64]*models.Project),
		failed:   make(map[int64]bool),
	}

	bar := newProgress(e.progress, len(events), "[cyan]Reconciling push events[reset]")
	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		e.processEvent(ctx, r, event)
		result.EventsProcessed++
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	result.Advisory = result.Bucket.TotalCommits() < e.threshold && user.KnownEmail() != ""
	return result, ctx.Err()
}

func (e *Engine) processEvent(ctx context.Context, r *run, event models.Event) {
	if event.ProjectID == 0 || event.Push == nil {
		return
	}
	project, ok := e.project(ctx, r, event.ProjectID)
	if !ok {
		return
	}
	push := event.Push

	if push.CommitTo != "" && !r.bucket.Seen(project.ID, push.CommitTo) {
		e.acceptDetail(ctx, r, project, push.CommitTo)
	}

	from := push.CommitFrom
	if from == zeroSHA {
		from = ""
	}
	// from is the pre-push head, so the listing leaves it out.
	if push.CommitCount > 1 && from != "" && push.CommitTo != "" {
		e.expandRange(ctx, r, project, from, push.CommitTo)
	}
}

// project returns the project detail, fetching it at most once per run.
func (e *Engine) project(ctx context.Context, r *run, id int64) (*models.Project, bool) {
	if p, ok := r.projects[id]; ok {
		return p, true
	}
	if r.failed[id] {
		return nil, false
	}
	p, err := e.src.GetProject(ctx, id)
	if err != nil {
		e.logger.Warn("fetch project failed", zap.Int64("project_id", id), zap.Error(err))
		r.failed[id] = true
		return nil, false
	}
	r.projects[id] = p
	return p, true
}

func (e *Engine) acceptDetail(ctx context.Context, r *run, project *models.Project, sha string) {
	commit, err := e.src.GetCommit(ctx, project.ID, sha)
	if err != nil {
		e.logger.Warn("fetch commit failed",
			zap.Int64("project_id", project.ID), zap.String("sha", sha), zap.Error(err))
		return
	}
	if !Attributable(r.user, commit) {
		e.logger.Debug("commit not attributed",
			zap.Int64("project_id", project.ID), zap.String("sha", sha), zap.String("author_email", commit.AuthorEmail))
		return
	}
	if commit.ID == "" {
		commit.ID = sha
	}
	r.bucket.Add(project, commit)
}

// expandRange lists a single page of at most rangeCap commits reachable from
// to but not from, then fetches detail for each unseen one.
func (e *Engine) expandRange(ctx context.Context, r *run, project *models.Project, from, to string) {
	listed, err := e.src.ListCommits(ctx, project.ID, gitlab.CommitListOptions{
		RefName:  from + ".." + to,
		PerPage:  e.rangeCap,
		MaxPages: 1,
	})
	if err != nil {
		e.logger.Warn("range listing failed",
			zap.Int64("project_id", project.ID), zap.String("from", from), zap.String("to", to), zap.Error(err))
	}
	if len(listed) > e.rangeCap {
		listed = listed[:e.rangeCap]
	}
	for _, c := range listed {
		if c.ID == "" || r.bucket.Seen(project.ID, c.ID) {
			continue
		}
		if !Attributable(r.user, c) {
			continue
		}
		e.acceptDetail(ctx, r, project, c.ID)
	}
}

// Attributable reports whether commit may be credited to user. Without a
// known email every commit referenced by a push event is trusted.
func Attributable(user *models.User, commit *models.Commit) bool {
	if commit == nil {
		return false
	}
	email := user.KnownEmail()
	if email == "" {
		return true
	}
	return sameEmail(commit.AuthorEmail, email) || sameEmail(commit.CommitterEmail, email)
}

func sameEmail(a, b string) bool {
	a = strings.TrimSpace(a)
	return a != "" && strings.EqualFold(a, strings.TrimSpace(b))
}
