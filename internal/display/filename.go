package display

import (
	"fmt"
	"regexp"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatAll  = "all"
)

// Formats expands a --format value; "all" means every format.
func Formats(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return []string{FormatJSON}, nil
	case FormatCSV:
		return []string{FormatCSV}, nil
	case FormatHTML, "":
		return []string{FormatHTML}, nil
	case FormatAll:
		return []string{FormatJSON, FormatCSV, FormatHTML}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (json, csv, html, all)", format)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// Filename names an output file after the export subject and time. HTML
// files are named as reports, the data formats as commit dumps.
func Filename(e *Export, format string) string {
	ts := e.ExportTime.Format("20060102_150405")
	suffix := "commits_" + ts + "." + format
	if format == FormatHTML {
		suffix = "legal_report_" + ts + ".html"
	}

	switch e.Kind {
	case KindCurrentUser:
		return fmt.Sprintf("current_user_%s_%s", sanitize(username(e)), suffix)
	case KindEmail:
		return fmt.Sprintf("email_%s_%s", sanitize(e.Email), suffix)
	default:
		return fmt.Sprintf("user_%d_%s_%s", e.UserID(), sanitize(username(e)), suffix)
	}
}

func username(e *Export) string {
	if e.User == nil {
		return ""
	}
	return e.User.Username
}
