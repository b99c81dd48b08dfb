package display

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/utils"
)

//go:embed report.html.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"signed": func(n int) string {
		if n >= 0 {
			return "+" + strconv.Itoa(n)
		}
		return strconv.Itoa(n)
	},
}).Parse(reportSource))

type reportProject struct {
	Info    jsonProjectInfo
	Stats   models.DiffStat
	Net     int
	Commits []jsonCommit
}

type reportView struct {
	Title      string
	ExportTime string
	RunID      string
	GitLabURL  string
	Since      string
	Until      string
	Method     string
	Version    string
	User       *jsonUser
	Email      string
	Projects   []reportProject
	Summary    jsonSummary
}

func buildReport(e *Export) reportView {
	data := buildJSON(e)
	view := reportView{
		Title:      e.Email,
		ExportTime: e.ExportTime.Format("2006-01-02 15:04:05"),
		RunID:      e.RunID,
		GitLabURL:  e.GitLabURL,
		Since:      "all time",
		Until:      "now",
		Method:     e.Method(),
		Version:    utils.GetVersion(),
		User:       data.UserInfo,
		Email:      e.Email,
		Summary:    data.Summary,
	}
	if e.User != nil {
		view.Title = e.User.Name
		if view.Title == "" {
			view.Title = e.User.Username
		}
	}
	if e.Window.Since != "" {
		view.Since = e.Window.Since
	}
	if e.Window.Until != "" {
		view.Until = e.Window.Until
	}
	for _, p := range data.Projects {
		view.Projects = append(view.Projects, reportProject{
			Info:    p.ProjectInfo,
			Stats:   p.Stats,
			Net:     p.Stats.Net(),
			Commits: p.Commits,
		})
	}
	return view
}

// WriteHTML renders the styled human-readable report.
func WriteHTML(w io.Writer, e *Export) error {
	if err := reportTemplate.Execute(w, buildReport(e)); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
