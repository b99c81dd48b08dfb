package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gnomegl/labslurp/internal/models"
)

var headerColor = color.New(color.Bold, color.FgCyan)

// UserInfo prints the resolved user's profile block.
func UserInfo(w io.Writer, user *models.User) {
	if user == nil {
		return
	}

	fmt.Fprintln(w)
	headerColor.Fprintf(w, "USER: %s (ID %d)\n", user.Username, user.ID)

	printField(w, "Name", user.Name)
	printField(w, "Email", models.EmailOrNotProvided(user.KnownEmail()))
	printField(w, "State", user.State)
	printField(w, "Profile", user.WebURL)

	parts := ""
	if !user.CreatedAt.IsZero() {
		parts += fmt.Sprintf("%s %s", color.WhiteString("Created:"), user.CreatedAt.Format("2006-01-02"))
	}
	if user.LastActivityOn != "" {
		if parts != "" {
			parts += "  "
		}
		parts += fmt.Sprintf("%s %s", color.WhiteString("Last active:"), user.LastActivityOn)
	}
	if parts != "" {
		fmt.Fprintln(w, parts)
	}
	fmt.Fprintln(w)
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.WhiteString(label+":"), value)
}
