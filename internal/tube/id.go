package tube

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reVideoID  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	reURLForms = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	}
)

// IsVideoID reports whether s is a bare 11 character YouTube video id.
func IsVideoID(s string) bool {
	return reVideoID.MatchString(s)
}

// ExtractVideoID returns the video id from a bare id or any of the
// common YouTube URL forms (watch, share, embed).
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty video identifier")
	}

	if IsVideoID(raw) {
		return raw, nil
	}

	for _, re := range reURLForms {
		if m := re.FindStringSubmatch(raw); len(m) == 2 {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("invalid YouTube URL or video id %q", raw)
}
