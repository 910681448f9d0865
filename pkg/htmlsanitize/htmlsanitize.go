// Package htmlsanitize cleans user-authored HTML before it is stored or indexed.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
	blockCloser  = strings.NewReplacer("</p>", "</p> ", "<br>", "<br> ", "<br/>", "<br/> ", "</div>", "</div> ", "</li>", "</li> ")
)

// Sanitize keeps formatting markup and strips scripts, handlers and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// PlainText strips every tag and collapses whitespace. Block boundaries turn
// into spaces so adjacent paragraphs do not run together.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strictPolicy.Sanitize(blockCloser.Replace(s)))
	return strings.Join(strings.Fields(text), " ")
}
