package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds nested escapes such as "&amp;lt;b&amp;gt;", each of which
// needs one more pass to surface and strip.
const maxPasses = 8

var policy = bluemonday.StrictPolicy()

// Text strips every tag from s and trims it. Entities the policy escapes are
// decoded so names like "Food & Drinks" survive unchanged, and the result is
// sanitized again until stable, so a decoded "&lt;script&gt;" cannot come back
// as markup.
func Text(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(policy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}

	// still changing: keep the escaped form, which carries no markup
	return strings.TrimSpace(policy.Sanitize(s))
}
