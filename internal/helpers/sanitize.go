package helpers

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	articlePolicyOnce sync.Once
	articlePolicy     *bluemonday.Policy
)

// articleHTMLPolicy allows the formatting tags the markdown renderer emits
// for article bodies (headings, paragraphs, emphasis, lists, code blocks,
// links) and strips everything else. Article content originates from an LLM,
// so the input is untrusted.
func articleHTMLPolicy() *bluemonday.Policy {
	articlePolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("code", "pre")
		p.AllowURLSchemes("http", "https", "mailto")
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		articlePolicy = p
	})
	return articlePolicy
}

// SanitizeHTMLRichText cleans rendered article HTML, removing scripts, event
// handlers and unsafe URLs while keeping the markdown formatting tags.
func SanitizeHTMLRichText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(articleHTMLPolicy().Sanitize(s))
}
