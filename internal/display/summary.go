package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
	"github.com/gnomegl/labslurp/internal/projects"
	"github.com/gnomegl/labslurp/internal/utils"
)

// Options controls how much of each commit the console summary shows.
type Options struct {
	ShowDetails bool
	ShowLinks   bool
}

// commitsPerProject caps the commits listed per project without --details.
const commitsPerProject = 5

// Results prints the per-project commit listing followed by the totals.
func Results(w io.Writer, e *Export, opts Options) {
	termInfo := getTerminalInfo(w)

	if e.Bucket.Len() == 0 {
		fmt.Fprintln(w, color.YellowString("[!] No commits found"))
		return
	}

	for _, entry := range e.Bucket.Projects() {
		p := entry.Project
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.HiGreenString("📂 %s", truncateString(p.PathWithNamespace, termInfo.maxDisplay-4)))
		fmt.Fprintf(w, "   %s %d  %s %s  %s %d\n",
			color.WhiteString("Commits:"), len(entry.Commits),
			color.WhiteString("Lines:"), formatDelta(entry.Totals),
			color.WhiteString("Files:"), entry.Totals.FilesChanged)

		commits := entry.SortedCommits()
		for i, c := range commits {
			if !opts.ShowDetails && i >= commitsPerProject {
				fmt.Fprintf(w, "    ... and %d more\n", len(commits)-i)
				break
			}
			printCommit(w, termInfo, c, opts)
		}
	}

	Totals(w, e)
}

func printCommit(w io.Writer, termInfo *terminalInfo, c *models.Commit, opts Options) {
	id := c.ShortID
	if id == "" {
		id = c.ID
	}
	when := "unknown date"
	if !c.CommittedDate.IsZero() {
		when = c.CommittedDate.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "    %s %s %s\n", color.MagentaString(id), when,
		truncateString(firstLine(c.Title), termInfo.maxDisplay-30))

	if opts.ShowDetails {
		fmt.Fprintf(w, "      %s %s <%s>\n", color.WhiteString("Author:"), c.AuthorName, c.AuthorEmail)
		if c.Stats != nil {
			fmt.Fprintf(w, "      %s %d  %s\n", color.WhiteString("Files:"), c.Stats.FilesChanged, formatDelta(*c.Stats))
		}
		if c.WebURL != "" {
			fmt.Fprintf(w, "      %s %s\n", color.BlueString("🔗"), truncateString(c.WebURL, termInfo.maxDisplay-10))
		}
	}
	if opts.ShowLinks {
		for _, link := range c.Links {
			fmt.Fprintf(w, "      %s %s\n", color.CyanString("↳"), link)
		}
	}
}

func formatDelta(d models.DiffStat) string {
	return color.GreenString("+%d", d.Additions) + " " + color.RedString("-%d", d.Deletions)
}

// Totals prints the run summary and the commit-time pattern.
func Totals(w io.Writer, e *Export) {
	totals := e.Bucket.Totals()

	var all []*models.Commit
	for _, entry := range e.Bucket.Projects() {
		all = append(all, entry.Commits...)
	}
	pattern := utils.AnalyzeActivity(all)

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "%s %s\n", color.WhiteString("Window:"), utils.DescribeWindow(e.Window))
	fmt.Fprintf(w, "%s %s\n", color.WhiteString("Method:"), e.Method())
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Total commits:"), e.Bucket.TotalCommits())
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Projects:"), e.Bucket.Len())
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Files changed:"), totals.FilesChanged)
	fmt.Fprintf(w, "%s %s (net %+d)\n", color.WhiteString("Lines:"), formatDelta(totals), totals.Net())
	if pattern.Total > 0 {
		fmt.Fprintf(w, "%s %02d:00 UTC, %s\n", color.WhiteString("Most active:"), pattern.MostActiveHour, pattern.MostActiveDay)
		fmt.Fprintf(w, "%s %d weekend, %d late night\n", color.WhiteString("Off hours:"), pattern.WeekendCommits, pattern.NightCommits)
	}
}

// Advisory points at the email search when reconciliation found little.
func Advisory(w io.Writer, user *models.User) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, color.YellowString("[!] Few commits found. The activity feed only keeps recent events."))
	fmt.Fprintf(w, "%s labslurp search %s\n", color.YellowString("[!] For older history try:"), user.KnownEmail())
}

// Written reports a saved output file.
func Written(w io.Writer, path string, e *Export) {
	fmt.Fprintf(w, "%s %s (%d commits, %d projects)\n",
		color.GreenString("[+] Saved"), path, e.Bucket.TotalCommits(), e.Bucket.Len())
}

// Users prints one line per user, at most limit lines.
func Users(w io.Writer, users []*models.User, limit int) {
	headerColor.Fprintf(w, "USERS (%d)\n", len(users))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, u := range users {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "... and %d more\n", len(users)-limit)
			break
		}
		fmt.Fprintf(w, "%s %-20s %s %s\n",
			color.MagentaString("%6d", u.ID), u.Username, u.Name,
			color.WhiteString("(%s)", models.EmailOrNotProvided(u.KnownEmail())))
	}
}

// ProjectList prints the cached project list.
func ProjectList(w io.Writer, list *projects.List, limit int) {
	headerColor.Fprintf(w, "PROJECTS (%d) from %s\n", len(list.Projects), list.GitLabURL)
	if !list.FetchedAt.IsZero() {
		fmt.Fprintf(w, "%s %s\n", color.WhiteString("Fetched:"), list.FetchedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, p := range list.Projects {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "... and %d more\n", len(list.Projects)-limit)
			break
		}
		fmt.Fprintf(w, "%s %s  %s\n", color.MagentaString("%6d", p.ID), p.PathWithNamespace,
			color.WhiteString(models.FormatTime(p.LastActivityAt)))
	}
}

// RateLimit prints the last rate-limit state the server reported.
func RateLimit(w io.Writer, rate gitlab.RateLimit, ok bool) {
	if !ok {
		return
	}
	line := fmt.Sprintf("API rate limit: %d/%d remaining", rate.Remaining, rate.Limit)
	if !rate.ResetAt.IsZero() {
		line += ", resets " + rate.ResetAt.Format("15:04:05")
	}
	if rate.Limit > 0 && rate.Remaining*10 < rate.Limit {
		fmt.Fprintln(w, color.YellowString("[!] %s", line))
		return
	}
	fmt.Fprintln(w, color.WhiteString(line))
}
