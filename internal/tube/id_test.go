package tube

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare id", in: "bFxWRkWAFzs", want: "bFxWRkWAFzs"},
		{name: "watch url", in: "https://www.youtube.com/watch?v=bFxWRkWAFzs", want: "bFxWRkWAFzs"},
		{name: "watch url with extra params", in: "https://www.youtube.com/watch?list=PL123&v=bFxWRkWAFzs", want: "bFxWRkWAFzs"},
		{name: "short url", in: "https://youtu.be/bFxWRkWAFzs", want: "bFxWRkWAFzs"},
		{name: "embed url", in: "https://www.youtube.com/embed/bFxWRkWAFzs", want: "bFxWRkWAFzs"},
		{name: "surrounding whitespace", in: "  bFxWRkWAFzs\n", want: "bFxWRkWAFzs"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "too short", in: "abc", wantErr: true},
		{name: "invalid characters", in: "bFxWRkWAF!s", wantErr: true},
		{name: "unrelated url", in: "https://example.com/watch?v=bFxWRkWAFzs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCookieHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		"\n" +
		".youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc123\n" +
		".youtube.com\tTRUE\t/\tTRUE\t0\tHSID\tdef456\n" +
		".example.com\tTRUE\t/\tTRUE\t0\tOTHER\tnope\n" +
		"malformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	header, err := LoadCookieHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "SID=abc123; HSID=def456", header)
}

func TestLoadCookieHeaderMissingFile(t *testing.T) {
	_, err := LoadCookieHeader(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
