// Package ytdlp pulls auto-generated subtitles through the yt-dlp binary
// without downloading any media. It is the fallback extraction strategy.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tubetext/tubetext/internal/subtitles"
)

// Name is the strategy name reported in responses.
const Name = "yt-dlp"

// CmdRunner is the interface for executing external commands, swapped
// out in tests.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type realCmdRunner struct{}

func (realCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Errors regularly show up on stdout, so capture both streams.
	return cmd.CombinedOutput()
}

var ErrNoSubtitles = errors.New("no subtitle files produced")

// Strategy invokes yt-dlp in subtitle-only mode and cleans whatever
// VTT/SRT file it writes.
type Strategy struct {
	Bin    string
	Langs  []string
	Runner CmdRunner
}

func New(bin string, langs []string) *Strategy {
	return NewWithRunner(bin, langs, realCmdRunner{})
}

func NewWithRunner(bin string, langs []string, runner CmdRunner) *Strategy {
	if bin == "" {
		bin = "yt-dlp"
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Strategy{Bin: bin, Langs: langs, Runner: runner}
}

func (s *Strategy) Name() string { return Name }

// Attempt downloads subtitles for videoID into a temporary directory and
// returns the cleaned text of the first subtitle file found.
func (s *Strategy) Attempt(ctx context.Context, videoID string) (string, error) {
	tempDir, err := os.MkdirTemp("", "tubetext-subs-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(s.Langs, ","),
		"--ignore-config",
		"--no-progress",
		"--output", filepath.Join(tempDir, "%(id)s.%(ext)s"),
		"https://www.youtube.com/watch?v=" + videoID,
	}

	out, err := s.Runner.Run(ctx, s.Bin, args...)
	if err != nil {
		return "", execErr(err, out)
	}

	path, err := findSubtitleFile(tempDir)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading subtitle file %q: %w", path, err)
	}

	text := subtitles.CleanCaptionFile(string(content))
	if text == "" {
		return "", fmt.Errorf("subtitle file %q: %w", filepath.Base(path), ErrNoSubtitles)
	}

	return text, nil
}

func findSubtitleFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading output directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".vtt", ".srt":
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", ErrNoSubtitles
}

func execErr(err error, out []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("yt-dlp not installed: %w", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf(
			"yt-dlp exited with code %d: %s: %w",
			exitErr.ExitCode(),
			strings.TrimSpace(string(out)),
			err,
		)
	}

	return fmt.Errorf("yt-dlp: %w", err)
}
