package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gnomegl/labslurp/internal/config"
	"github.com/gnomegl/labslurp/internal/discovery"
	"github.com/gnomegl/labslurp/internal/display"
	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/projects"
	"github.com/gnomegl/labslurp/internal/utils"
	"go.uber.org/zap"
)

// usersShown caps the user listing on the console.
const usersShown = 20

// Client is the remote surface the orchestrator drives. *gitlab.Client
// satisfies it.
type Client interface {
	discovery.Source
	CurrentUser(ctx context.Context) (*models.User, error)
	FindUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, opts gitlab.ListUsersOptions) ([]*models.User, error)
	ListProjects(ctx context.Context, opts gitlab.ListProjectsOptions) ([]models.ProjectSummary, error)
	RateLimit() (gitlab.RateLimit, bool)
}

var _ Client = (*gitlab.Client)(nil)

// ExportRequest is one run of the reconciliation or search path.
type ExportRequest struct {
	// Target is a numeric user id, a username or "me" for an export, and an
	// email address for a search.
	Target   string
	Format   string
	Since    string
	Until    string
	Details  bool
	Links    bool
	Enhanced bool
}

type Orchestrator struct {
	client   Client
	settings *config.Settings
	store    projects.Store
	logger   *zap.Logger
	out      io.Writer
	errOut   io.Writer
}

type Options struct {
	Store  projects.Store
	Logger *zap.Logger
	// Out receives results; ErrOut receives progress bars and warnings.
	Out    io.Writer
	ErrOut io.Writer
}

func NewOrchestrator(client Client, settings *config.Settings, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Store == nil {
		opts.Store = projects.NewFileStore(settings.ProjectsDir, settings.GitLabURL)
	}
	return &Orchestrator{
		client:   client,
		settings: settings,
		store:    opts.Store,
		logger:   opts.Logger,
		out:      opts.Out,
		errOut:   opts.ErrOut,
	}
}

// Export reconciles a user's push activity into commits and writes the
// requested formats. It returns the paths written.
func (o *Orchestrator) Export(ctx context.Context, req ExportRequest) ([]string, error) {
	formats, err := display.Formats(req.Format)
	if err != nil {
		return nil, err
	}
	window := o.window(req.Since, req.Until)

	user, kind, err := o.resolveUser(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	display.UserInfo(o.out, user)
	fmt.Fprintln(o.errOut, color.BlueString("\nReconciling push activity (%s)...", utils.DescribeWindow(window)))

	engine := discovery.NewEngine(o.client, discovery.EngineOptions{
		RangeCap:           o.settings.Limits.RangeCap,
		LowResultThreshold: o.settings.Limits.LowResultThreshold,
		Logger:             o.logger,
		Progress:           o.errOut,
	})
	result, err := engine.ReconcileUser(ctx, user, window)
	if err != nil {
		return nil, err
	}

	export := display.NewExport(kind, o.settings.GitLabURL, window, result.Bucket)
	export.User = result.User
	paths, err := o.finish(ctx, export, formats, req)
	if err != nil {
		return paths, err
	}
	if result.Advisory {
		display.Advisory(o.out, result.User)
	}
	return paths, nil
}

// Search scans the cached project list for commits by an email address.
func (o *Orchestrator) Search(ctx context.Context, req ExportRequest) ([]string, error) {
	formats, err := display.Formats(req.Format)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Target)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("not an email address: %q", req.Target)
	}
	window := o.window(req.Since, req.Until)

	fmt.Fprintln(o.errOut, color.BlueString("Searching commits by %s (%s)...", email, utils.DescribeWindow(window)))
	searcher := discovery.NewSearcher(o.client, o.store, discovery.SearchOptions{
		Projects:         o.settings.Limits.SearchProjects,
		EnhancedProjects: o.settings.Limits.EnhancedSearchProjects,
		Logger:           o.logger,
		Progress:         o.errOut,
	})
	bucket, err := searcher.ByEmail(ctx, email, window, req.Enhanced)
	if err != nil {
		return nil, err
	}

	export := display.NewExport(display.KindEmail, o.settings.GitLabURL, window, bucket)
	export.Email = email
	export.Enhanced = req.Enhanced
	return o.finish(ctx, export, formats, req)
}

// Users lists the users visible to the token.
func (o *Orchestrator) Users(ctx context.Context, search string) error {
	users, err := o.client.ListUsers(ctx, gitlab.ListUsersOptions{Search: search})
	if err != nil {
		if len(users) == 0 {
			return fmt.Errorf("list users: %w", err)
		}
		o.logger.Warn("user listing incomplete", zap.Error(err))
	}
	display.Users(o.out, users, usersShown)
	o.rateLimit()
	return nil
}

// Projects refreshes the cached project list and prints it.
func (o *Orchestrator) Projects(ctx context.Context, membership bool, limit int) error {
	fmt.Fprintln(o.errOut, color.BlueString("Fetching project list from %s...", o.settings.GitLabURL))
	list, err := projects.Refresh(ctx, o.client, o.store, o.settings.GitLabURL, gitlab.ListProjectsOptions{Membership: membership})
	if err != nil {
		return err
	}
	display.ProjectList(o.out, list, limit)
	if fs, ok := o.store.(*projects.FileStore); ok {
		fmt.Fprintln(o.out, color.GreenString("[+] Saved %s", fs.Path()))
	}
	o.rateLimit()
	return nil
}

func (o *Orchestrator) window(since, until string) models.TimeWindow {
	window, warnings := utils.ParseWindow(since, until)
	for _, w := range warnings {
		fmt.Fprintln(o.errOut, color.YellowString("[!] %s", w))
	}
	return window
}

// resolveUser accepts a numeric id, "me" or a username.
func (o *Orchestrator) resolveUser(ctx context.Context, target string) (*models.User, display.ExportKind, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "":
		return nil, display.KindUser, errors.New("a user id, username or \"me\" is required")
	case strings.EqualFold(target, "me"):
		user, err := o.client.CurrentUser(ctx)
		if err != nil {
			return nil, display.KindCurrentUser, fmt.Errorf("fetch current user: %w", err)
		}
		return user, display.KindCurrentUser, nil
	}

	if id, err := strconv.ParseInt(target, 10, 64); err == nil {
		user, err := o.client.GetUser(ctx, id)
		if err != nil {
			return nil, display.KindUser, fmt.Errorf("fetch user %d: %w", id, err)
		}
		return user, display.KindUser, nil
	}

	user, err := o.client.FindUser(ctx, strings.TrimPrefix(target, "@"))
	if gitlab.IsNotFound(err) {
		return nil, display.KindUser, fmt.Errorf("no GitLab user named %q", target)
	}
	if err != nil {
		return nil, display.KindUser, fmt.Errorf("find user %s: %w", target, err)
	}
	return user, display.KindUser, nil
}

// finish enriches the bucket, prints the summary and writes every format.
func (o *Orchestrator) finish(ctx context.Context, export *display.Export, formats []string, req ExportRequest) ([]string, error) {
	if export.Bucket.TotalCommits() > 0 {
		enricher := discovery.NewEnricher(o.client, discovery.EnrichOptions{
			Links:    req.Links,
			Logger:   o.logger,
			Progress: o.errOut,
		})
		if err := enricher.Enrich(ctx, export.Bucket); err != nil {
			return nil, err
		}
	}

	fmt.Fprintln(o.out)
	display.Results(o.out, export, display.Options{ShowDetails: req.Details, ShowLinks: req.Links})

	paths, err := o.write(export, formats)
	if err != nil {
		return paths, err
	}
	o.rateLimit()
	return paths, nil
}

func (o *Orchestrator) write(export *display.Export, formats []string) ([]string, error) {
	if err := os.MkdirAll(o.settings.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, format := range formats {
		path := filepath.Join(o.settings.OutputDir, display.Filename(export, format))
		if err := writeFile(path, export, format); err != nil {
			o.logger.Error("write export failed", zap.String("path", path), zap.Error(err))
			return paths, err
		}
		display.Written(o.out, path, export)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, export *display.Export, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	switch format {
	case display.FormatJSON:
		err = display.WriteJSON(f, export)
	case display.FormatCSV:
		err = display.WriteCSV(f, export)
	default:
		err = display.WriteHTML(f, export)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (o *Orchestrator) rateLimit() {
	rate, ok := o.client.RateLimit()
	display.RateLimit(o.errOut, rate, ok)
}
