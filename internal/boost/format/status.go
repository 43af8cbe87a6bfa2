// Package format renders status and artifact strings into the text a
// content chunk carries, per the configured HARBOR_BOOST_STATUS_STYLE.
package format

import (
	"fmt"

	"github.com/harborlabs/boost/internal/config"
)

// Status renders s per style. md:codeblock fences it tagged "boost";
// md:h1/h2/h3 renders a markdown heading; plain returns the bare string
// with surrounding blank lines; none suppresses it entirely.
func Status(style config.StatusStyle, s string) string {
	switch style {
	case config.StatusCodeblock:
		return fmt.Sprintf("```boost\n%s\n```\n", s)
	case config.StatusH1:
		return fmt.Sprintf("\n# %s\n", s)
	case config.StatusH2:
		return fmt.Sprintf("\n## %s\n", s)
	case config.StatusH3:
		return fmt.Sprintf("\n### %s\n", s)
	case config.StatusNone:
		return ""
	case config.StatusPlain:
		fallthrough
	default:
		return fmt.Sprintf("\n%s\n", s)
	}
}

// Artifact renders html as a fenced HTML code block, the only artifact
// rendering the core performs — full artifact templating is out of scope.
func Artifact(html string) string {
	return fmt.Sprintf("```html\n%s\n```\n", html)
}
