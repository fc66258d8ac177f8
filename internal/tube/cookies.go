package tube

import (
	"fmt"
	"os"
	"strings"
)

// LoadCookieHeader reads a Netscape cookies.txt file and builds a Cookie
// header value from the youtube.com entries. Comment lines and entries
// for other domains are skipped.
func LoadCookieHeader(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading cookies file %q: %w", path, err)
	}

	var pairs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}

		if !strings.Contains(fields[0], "youtube.com") {
			continue
		}

		name, value := fields[5], fields[6]
		pairs = append(pairs, name+"="+value)
	}

	return strings.Join(pairs, "; "), nil
}
