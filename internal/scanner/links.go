package scanner

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+|www\.[^\s<>"'()\[\]]+`)

// ExtractLinks returns the distinct URLs in a commit message in order of
// first appearance. Trailing sentence punctuation is not part of a link.
func ExtractLinks(content string) []string {
	matches := urlPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, link := range matches {
		link = strings.TrimRight(link, ".,;:!?")
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}
