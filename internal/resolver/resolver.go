// Package resolver orchestrates the transcript extraction strategies:
// validate the identifier, try each strategy in priority order, and
// normalize the first non-empty result into a transcript.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tubetext/tubetext/internal/subtitles"
	"github.com/tubetext/tubetext/internal/tube"
	"golang.org/x/sync/singleflight"
)

// Strategy is one method of retrieving caption data for a video.
// Attempt returns the raw caption text; normalization happens in the
// resolver so every strategy is held to the same rules.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID string) (string, error)
}

// Result is a successful resolution. Counts are always computed from
// Transcript at build time.
type Result struct {
	Success        bool   `json:"success"`
	VideoID        string `json:"video_id"`
	Transcript     string `json:"transcript"`
	MethodUsed     string `json:"method_used"`
	Timestamp      string `json:"timestamp"`
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
}

// Category classifies a failed resolution.
type Category string

const (
	CategoryInvalidInput Category = "invalid_input"
	CategoryExhausted    Category = "extraction_failed"
)

// Failure is returned when no strategy produced a transcript, or the
// input never made it to a strategy. It is the error value of Resolve
// and also the wire shape of a failed response.
type Failure struct {
	Success  bool     `json:"success"`
	VideoID  string   `json:"video_id"`
	Category Category `json:"error"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors,omitempty"`

	cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Category, f.Message)
}

func (f *Failure) Unwrap() error { return f.cause }

// Config is passed in at construction time so tests can substitute
// strategies and policy without process-level side effects.
type Config struct {
	// AttemptTimeout bounds each strategy attempt. Zero means no bound
	// beyond the request context.
	AttemptTimeout time.Duration
	// TransientRetries is the number of extra attempts a strategy gets
	// when its failure looks transient (timeout, connection error, rate
	// limit). Zero falls back to the next strategy immediately.
	TransientRetries int
	// DedupeInflight collapses concurrent resolutions of the same video
	// into a single upstream attempt. Resolution is idempotent, so
	// callers can't observe the difference beyond timing.
	DedupeInflight bool
	// Now is the clock, swapped in tests.
	Now func() time.Time
}

type Resolver struct {
	strategies []Strategy
	cfg        Config
	group      singleflight.Group
}

func New(cfg Config, strategies ...Strategy) *Resolver {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{strategies: strategies, cfg: cfg}
}

// Resolve turns a raw identifier (bare id or YouTube URL) into a
// transcript. On failure the returned error is always a *Failure.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Result, error) {
	id, err := tube.ExtractVideoID(raw)
	if err != nil {
		return nil, &Failure{
			VideoID:  strings.TrimSpace(raw),
			Category: CategoryInvalidInput,
			Message:  err.Error(),
			cause:    err,
		}
	}

	if !r.cfg.DedupeInflight {
		return r.resolve(ctx, id)
	}

	v, err, shared := r.group.Do(id, func() (any, error) {
		return r.resolve(ctx, id)
	})
	if shared {
		slog.Debug("shared in-flight resolution", slog.String("id", id))
	}
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (r *Resolver) resolve(ctx context.Context, id string) (*Result, error) {
	var (
		attemptErrs []string
		lastErr     error
	)

	for _, strategy := range r.strategies {
		text, err := r.attempt(ctx, strategy, id)
		if err == nil {
			normalized := subtitles.Normalize(text)
			if normalized == "" {
				err = fmt.Errorf("empty transcript")
			} else {
				slog.Info("transcript resolved",
					slog.String("id", id),
					slog.String("method", strategy.Name()),
					slog.Int("characters", utf8.RuneCountInString(normalized)),
				)
				return r.result(id, normalized, strategy.Name()), nil
			}
		}

		slog.Warn("strategy failed",
			slog.String("id", id),
			slog.String("method", strategy.Name()),
			slog.Any("error", err),
		)
		attemptErrs = append(attemptErrs, fmt.Sprintf("%s: %v", strategy.Name(), err))
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	message := "could not extract transcript"
	if lastErr != nil {
		message = lastErr.Error()
	}

	return nil, &Failure{
		VideoID:  id,
		Category: CategoryExhausted,
		Message:  message,
		Errors:   attemptErrs,
		cause:    lastErr,
	}
}

func (r *Resolver) result(id, transcript, method string) *Result {
	return &Result{
		Success:        true,
		VideoID:        id,
		Transcript:     transcript,
		MethodUsed:     method,
		Timestamp:      r.cfg.Now().Format(time.RFC3339),
		WordCount:      len(strings.Fields(transcript)),
		CharacterCount: utf8.RuneCountInString(transcript),
	}
}

// runAttempt executes a single strategy attempt under the configured
// timeout. A panic inside a strategy is recovered and folded into the
// fallback like any other failure.
func (r *Resolver) runAttempt(ctx context.Context, strategy Strategy, id string) (text string, err error) {
	if r.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("strategy %s panicked: %v", strategy.Name(), rec)
		}
	}()

	return strategy.Attempt(ctx, id)
}
