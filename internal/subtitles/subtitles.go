// Package subtitles turns raw caption payloads (VTT, SRT, timedtext text)
// into clean prose.
package subtitles

import (
	"regexp"
	"strings"
)

var (
	reTag       = regexp.MustCompile(`<[^>]+>`)
	reEntity    = regexp.MustCompile(`&[a-zA-Z]+;`)
	reSpace     = regexp.MustCompile(`\s+`)
	reBrackets  = regexp.MustCompile(`\[[^\]]*\]`)
	reParens    = regexp.MustCompile(`\([^)]*\)`)
	rePunctGap  = regexp.MustCompile(`\s+([,.!?])`)
	reDigitLine = regexp.MustCompile(`^\d+$`)
)

// CleanCaptionFile extracts the spoken text from a VTT or SRT file,
// dropping headers, cue numbers, timing lines and inline markup.
func CleanCaptionFile(content string) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"):
			continue
		case strings.Contains(line, "-->"):
			continue
		case reDigitLine.MatchString(line):
			continue
		}

		line = reTag.ReplaceAllString(line, "")
		line = reEntity.ReplaceAllString(line, "")
		line = strings.TrimSpace(reSpace.ReplaceAllString(line, " "))
		if line != "" {
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, " ")
}

// StripMarkup removes tags and entities from a single caption line.
func StripMarkup(s string) string {
	s = reTag.ReplaceAllString(s, "")
	s = reEntity.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Normalize collapses a raw transcript into continuous prose: single
// spaces, no [Music]/(applause) artifacts, no space before punctuation,
// sentences starting with a capital.
func Normalize(text string) string {
	text = reSpace.ReplaceAllString(text, " ")
	text = reBrackets.ReplaceAllString(text, "")
	text = reParens.ReplaceAllString(text, "")
	text = reSpace.ReplaceAllString(text, " ")
	text = rePunctGap.ReplaceAllString(text, "$1")

	sentences := strings.Split(text, ". ")
	cleaned := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		runes := []rune(sentence)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		cleaned = append(cleaned, string(runes))
	}

	return strings.TrimSpace(strings.Join(cleaned, ". "))
}
