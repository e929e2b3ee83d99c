package workflow

import (
	"regexp"
	"strings"
)

// Directive keys the writing stage acts on. Unknown keys found in a topic are
// still extracted and kept so future stages can pick them up.
const (
	DirectiveTone     = "tone"
	DirectiveStyle    = "style"
	DirectiveLength   = "length"
	DirectiveAudience = "audience"
	DirectiveFormat   = "format"
)

// DirectiveDefaults are applied for every known key absent from the topic.
var DirectiveDefaults = map[string]string{
	DirectiveTone:     "professional",
	DirectiveStyle:    "informative",
	DirectiveLength:   "comprehensive",
	DirectiveAudience: "general",
	DirectiveFormat:   "article",
}

var (
	directivePattern  = regexp.MustCompile(`\[(\w+)[=:]([^\]]+)\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ParseDirectives extracts inline control tokens like [tone:casual] or
// [length=brief] from a raw topic. It returns the topic with every token
// removed and whitespace collapsed, plus the directive map with defaults
// filled in for the known keys.
//
// Keys are case-insensitive. Bracketed text without a key:value separator,
// such as numeric citations, is left in the topic untouched. Malformed
// brackets never produce an error; they simply do not match.
func ParseDirectives(topic string) (string, map[string]string) {
	directives := make(map[string]string, len(DirectiveDefaults))

	matches := directivePattern.FindAllStringSubmatch(topic, -1)
	for _, m := range matches {
		key := strings.ToLower(m[1])
		directives[key] = strings.TrimSpace(m[2])
	}

	clean := topic
	if len(matches) > 0 {
		clean = directivePattern.ReplaceAllString(clean, "")
	}
	clean = strings.TrimSpace(whitespacePattern.ReplaceAllString(clean, " "))

	for key, def := range DirectiveDefaults {
		if _, ok := directives[key]; !ok {
			directives[key] = def
		}
	}
	return clean, directives
}
