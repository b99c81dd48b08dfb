package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnomegl/labslurp/internal/art"
	"github.com/gnomegl/labslurp/internal/auth"
	"github.com/gnomegl/labslurp/internal/config"
	"github.com/gnomegl/labslurp/internal/display"
	"github.com/gnomegl/labslurp/internal/logging"
	"github.com/gnomegl/labslurp/internal/service"
	"github.com/gnomegl/labslurp/internal/utils"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const helpTemplate = `{{.Name}} - {{.Usage}}

Usage: {{.HelpName}} [options] <user-id|username|me>
       {{.HelpName}} [options] <command> [command options] <argument>

Commands:
{{range .VisibleCommands}}   {{join .Names ", "}}{{"\t"}}{{.Usage}}
{{end}}
Options:
   {{range .VisibleFlags}}{{.}}
   {{end}}`

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "GitLab instance URL",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "GitLab access token (saved for later runs)",
		},
		&cli.StringFlag{
			Name:  "auth-mode",
			Usage: "How the token is sent: private (PRIVATE-TOKEN header) or oauth (bearer)",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for exported files",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostics level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Project list cache backend (file, redis)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML settings file",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "Environment file read before the real environment",
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   display.FormatHTML,
			Usage:   "Output format (json, csv, html, all)",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Only commits on or after this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "Only commits on or before this date (YYYY-MM-DD)",
		},
		&cli.BoolFlag{
			Name:    "details",
			Aliases: []string{"d"},
			Usage:   "Show every commit with author and stats",
		},
		&cli.BoolFlag{
			Name:    "links",
			Aliases: []string{"l"},
			Usage:   "Show URLs found in commit messages",
		},
	}
}

func NewApp() *cli.App {
	cli.AppHelpTemplate = helpTemplate

	return &cli.App{
		Name:      "labslurp",
		Usage:     "Discover and export a GitLab user's commits across projects",
		Version:   "v" + utils.GetVersion(),
		Flags:     append(globalFlags(), exportFlags()...),
		Action:    exportAction,
		ArgsUsage: "<user-id|username|me>",
		Before: func(c *cli.Context) error {
			if c.Bool("help") || c.Bool("version") {
				return nil
			}
			art.PrintLogo(c.App.ErrWriter)
			if c.Args().Len() == 0 {
				_ = cli.ShowAppHelp(c)
				return cli.Exit("", 1)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "Reconcile a user's push activity into commits and export them",
				ArgsUsage: "<user-id|username|me>",
				Flags:     exportFlags(),
				Action:    exportAction,
			},
			{
				Name:      "search",
				Usage:     "Search the cached project list for commits by an email address",
				ArgsUsage: "<email>",
				Flags: append(exportFlags(), &cli.BoolFlag{
					Name:    "enhanced",
					Aliases: []string{"e"},
					Usage:   "Scan more projects and fetch full project details",
				}),
				Action: searchAction,
			},
			{
				Name:  "users",
				Usage: "List users visible to the token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Filter by name, username or email"},
				},
				Action: usersAction,
			},
			{
				Name:  "projects",
				Usage: "Refresh and show the cached project list",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "membership", Aliases: []string{"m"}, Usage: "Only projects the token's user is a member of"},
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "Projects shown on the console (0 for all)"},
				},
				Action: projectsAction,
			},
		},
		Authors: []*cli.Author{
			{Name: "gnomegl"},
		},
		ErrWriter: os.Stderr,
	}
}

func exportRequest(c *cli.Context) service.ExportRequest {
	return service.ExportRequest{
		Target:  c.Args().First(),
		Format:  c.String("format"),
		Since:   c.String("since"),
		Until:   c.String("until"),
		Details: c.Bool("details"),
		Links:   c.Bool("links"),
	}
}

func exportAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("missing <user-id|username|me> argument")
	}
	req := exportRequest(c)
	if _, err := display.Formats(req.Format); err != nil {
		return err
	}
	return withOrchestrator(c, func(o *service.Orchestrator) error {
		_, err := o.Export(c.Context, req)
		return err
	})
}

func searchAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("missing <email> argument")
	}
	req := exportRequest(c)
	req.Enhanced = c.Bool("enhanced")
	if _, err := display.Formats(req.Format); err != nil {
		return err
	}
	return withOrchestrator(c, func(o *service.Orchestrator) error {
		_, err := o.Search(c.Context, req)
		return err
	})
}

func usersAction(c *cli.Context) error {
	return withOrchestrator(c, func(o *service.Orchestrator) error {
		return o.Users(c.Context, c.String("search"))
	})
}

func projectsAction(c *cli.Context) error {
	return withOrchestrator(c, func(o *service.Orchestrator) error {
		return o.Projects(c.Context, c.Bool("membership"), c.Int("limit"))
	})
}

// withOrchestrator loads settings, resolves and checks the token, and hands
// a ready orchestrator to fn.
func withOrchestrator(c *cli.Context, fn func(*service.Orchestrator) error) error {
	settings, err := config.Load(config.LoadOptions{
		ConfigPath: c.String("config"),
		EnvFile:    c.String("env-file"),
		Overrides: config.Overrides{
			GitLabURL:    c.String("url"),
			AuthMode:     c.String("auth-mode"),
			OutputDir:    c.String("output-dir"),
			LogLevel:     c.String("log-level"),
			CacheBackend: c.String("cache"),
		},
	})
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger, err := logging.New(settings.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	token := auth.GetToken(auth.TokenOptions{
		Flag:        c.String("token"),
		Configured:  settings.Token,
		Interactive: display.IsTerminal(os.Stdin),
		GitLabURL:   settings.GitLabURL,
		In:          os.Stdin,
		Out:         c.App.ErrWriter,
	})

	client, err := service.NewClient(settings, token, logger)
	if err != nil {
		return err
	}
	if token != "" {
		user, err := auth.ValidateToken(c.Context, client)
		if err != nil {
			return fmt.Errorf("token validation failed: %w", err)
		}
		if user != nil {
			logger.Info("authenticated", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
		}
	}

	store, closeStore := service.NewStore(settings)
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close project cache", zap.Error(err))
		}
	}()

	orch := service.NewOrchestrator(client, settings, service.Options{
		Store:  store,
		Logger: logger,
		Out:    c.App.Writer,
		ErrOut: c.App.ErrWriter,
	})
	return fn(orch)
}
