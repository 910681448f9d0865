package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9 -]+`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Make lowercases s, drops anything that is not a letter, digit or space and
// joins the words with hyphens.
func Make(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = invalidChars.ReplaceAllString(out, "")
	out = separators.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// WithSuffix appends a short random token, used when Make collides.
func WithSuffix(s string) string {
	suffix := uuid.NewString()[:8]
	if s == "" {
		return suffix
	}
	return s + "-" + suffix
}
