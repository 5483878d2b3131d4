// Package sanitizer cleans untrusted text before it is inserted into emails
// or stored documents.
package sanitizer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	inlinePolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Inline markup produced from footer markdown: emphasis, links and
		// the call-to-action button.
		inlinePolicy = bluemonday.NewPolicy()
		inlinePolicy.AllowStandardURLs()
		inlinePolicy.AllowURLSchemes("http", "https", "mailto", "tel")
		inlinePolicy.AllowElements("strong", "b", "em", "i", "br", "code")
		inlinePolicy.AllowAttrs("href").OnElements("a")
		inlinePolicy.AllowAttrs("class").Matching(regexp.MustCompile(`^btn$`)).OnElements("a")
		inlinePolicy.RequireNoFollowOnLinks(true)
		inlinePolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripHTML removes every tag and returns the remaining text trimmed.
func StripHTML(s string) string {
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeInline keeps inline formatting, links and button anchors. Block
// elements, scripts, event handlers and non-web URL schemes are removed.
func SanitizeInline(s string) string {
	initPolicies()
	return inlinePolicy.Sanitize(s)
}
