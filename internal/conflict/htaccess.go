package conflict

import (
	"fmt"
	"net/url"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// HtaccessRule renders a directive as an Apache permanent redirect. The loser
// is written as a path so the rule works on the site it belongs to.
func HtaccessRule(d types.RedirectDirective) (string, error) {
	loser, err := url.Parse(d.LoserURL)
	if err != nil {
		return "", fmt.Errorf("invalid loser url %q: %w", d.LoserURL, err)
	}
	path := loser.EscapedPath()
	if path == "" {
		path = "/"
	}
	if d.WinnerURL == "" {
		return "", fmt.Errorf("redirect for %q has no winner url", d.LoserURL)
	}
	return fmt.Sprintf("Redirect 301 %s %s", path, d.WinnerURL), nil
}
