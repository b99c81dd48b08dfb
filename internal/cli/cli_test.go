package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestApp() (*bytes.Buffer, *bytes.Buffer, func(args ...string) error) {
	color.NoColor = true
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return out, errOut, func(args ...string) error {
		app := NewApp()
		app.Writer = out
		app.ErrWriter = errOut
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.Run(append([]string{"labslurp"}, args...))
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := NewApp()
	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"export", "search", "users", "projects"}, names)
}

func TestApp_MissingArguments(t *testing.T) {
	_, errOut, run := newTestApp()

	err := run("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing <email> argument")
	assert.Contains(t, errOut.String(), "for GitLab")

	err = run("export")
	assert.ErrorContains(t, err, "missing <user-id|username|me> argument")
}

func TestApp_RejectsFormatBeforeConnecting(t *testing.T) {
	_, _, run := newTestApp()

	err := run("export", "--format", "pdf", "7")
	assert.ErrorContains(t, err, "unsupported format")

	err = run("--format", "xml", "7")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestApp_NoArgumentsShowsHelp(t *testing.T) {
	out, _, run := newTestApp()

	err := run()
	require.Error(t, err)
	assert.Contains(t, out.String(), "Usage: labslurp")
	assert.Contains(t, out.String(), "search")
}
