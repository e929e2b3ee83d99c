package helpers

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxFilenameLength = 240
	fallbackFilename  = "untitled"
)

var filenameSeparators = regexp.MustCompile(`[\s_]+`)

// SanitizeFilename turns an arbitrary string into a filesystem-safe name.
// Alphanumerics, spaces, hyphens and underscores survive; everything else
// collapses to a single underscore. The result is lowercased and truncated
// at a word boundary so long topics never exceed filesystem name limits.
func SanitizeFilename(name string) string {
	if strings.TrimSpace(name) == "" {
		return fallbackFilename
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if b.Len() > 0 && !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	sanitized := filenameSeparators.ReplaceAllString(strings.TrimSpace(b.String()), "_")
	sanitized = strings.ToLower(strings.Trim(sanitized, "_-"))
	if sanitized == "" {
		return fallbackFilename
	}

	if len(sanitized) > maxFilenameLength {
		truncated := sanitized[:maxFilenameLength]
		// prefer cutting at an underscore near the end over mid-word
		if idx := strings.LastIndex(truncated, "_"); idx > maxFilenameLength-100 {
			truncated = truncated[:idx]
		}
		sanitized = strings.TrimRight(truncated, "_-")
		if sanitized == "" {
			return fallbackFilename
		}
	}
	return sanitized
}

// DownloadFilename builds the markdown download name for a generated article,
// reserving room for the run identifier suffix.
func DownloadFilename(topic, runID string) string {
	suffix := "_" + runID + ".md"
	name := SanitizeFilename(topic)
	if len(name)+len(suffix) > maxFilenameLength {
		name = strings.TrimRight(name[:maxFilenameLength-len(suffix)], "_-")
		if name == "" {
			name = fallbackFilename
		}
	}
	return name + suffix
}
