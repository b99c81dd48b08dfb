package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gnomegl/labslurp/internal/gitlab"
	"github.com/gnomegl/labslurp/internal/models"
)

const tokenFileName = "token"

type TokenOptions struct {
	// Flag is the --token value. It wins and is saved for later runs.
	Flag string
	// Configured comes from the environment or the config file.
	Configured string
	// Dir holds the saved token; empty means {UserConfigDir}/labslurp.
	Dir string
	// Interactive allows prompting on In. Only set it when stdin is a terminal.
	Interactive bool
	GitLabURL   string
	In          io.Reader
	Out         io.Writer
}

// GetToken resolves the access token: flag, then environment or config
// file, then the saved token, then an interactive prompt. An empty result
// means anonymous access.
func GetToken(opts TokenOptions) string {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	dir := opts.Dir
	if dir == "" {
		if cfgDir, err := os.UserConfigDir(); err == nil {
			dir = filepath.Join(cfgDir, "labslurp")
		}
	}

	if token := strings.TrimSpace(opts.Flag); token != "" {
		if err := saveToken(dir, token); err == nil {
			fmt.Fprintln(out, color.GreenString("Token saved successfully"))
		}
		return token
	}
	if token := strings.TrimSpace(opts.Configured); token != "" {
		return token
	}
	if token := loadToken(dir); token != "" {
		return token
	}
	if !opts.Interactive || opts.In == nil {
		return ""
	}

	base := strings.TrimRight(opts.GitLabURL, "/")
	if base == "" {
		base = "https://gitlab.com"
	}
	fmt.Fprintln(out, color.YellowString("\nA GitLab access token is needed to read private projects and user emails."))
	fmt.Fprintln(out, color.BlueString("To create a new token:"))
	fmt.Fprintf(out, "1. Visit: %s/-/user_settings/personal_access_tokens\n", base)
	fmt.Fprintln(out, "2. Give it a name (e.g. 'labslurp')")
	fmt.Fprintln(out, "3. Select the scopes:")
	fmt.Fprintln(out, color.GreenString("   - read_api"))
	fmt.Fprintln(out, color.GreenString("   - read_user"))
	fmt.Fprintln(out, color.GreenString("   - read_repository"))
	fmt.Fprintln(out, "4. Create the token and paste it below")
	fmt.Fprint(out, "\nPaste your token here (or press Enter to continue without one): ")

	line, _ := bufio.NewReader(opts.In).ReadString('\n')
	token := strings.TrimSpace(line)
	if token == "" {
		fmt.Fprintln(out, color.YellowString("\nRunning without a token. Private projects and emails will not be visible."))
		return ""
	}
	if err := saveToken(dir, token); err == nil {
		fmt.Fprintln(out, color.GreenString("Token saved successfully"))
	}
	return token
}

func saveToken(dir, token string) error {
	if dir == "" {
		return errors.New("no config directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), 0o600)
}

func loadToken(dir string) string {
	if dir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// CurrentUserGetter is the call used to check a token.
type CurrentUserGetter interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// ValidateToken checks the token against GET /user. A rate-limited answer
// is not treated as an invalid token.
func ValidateToken(ctx context.Context, client CurrentUserGetter) (*models.User, error) {
	user, err := client.CurrentUser(ctx)
	if err == nil {
		return user, nil
	}
	var apiErr *gitlab.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("invalid GitLab token")
		case http.StatusTooManyRequests:
			return nil, nil
		}
	}
	return nil, fmt.Errorf("error validating token: %w", err)
}
