// Package cli wires the service together: configuration, strategies,
// resolver and the two entry points (serve, extract).
package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/tubetext/tubetext/internal/config"
	"github.com/tubetext/tubetext/internal/resolver"
	"github.com/tubetext/tubetext/internal/tube"
	"github.com/tubetext/tubetext/internal/ytdlp"
	"golang.org/x/time/rate"
)

var (
	cfgPath string
	verbose bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tubetext",
		Short:         "Extract YouTube transcripts over HTTP or the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "tubetext.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newExtractCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// buildResolver assembles the fallback chain from config: captions
// lookup first, yt-dlp second.
func buildResolver(cfg *config.Config) (*resolver.Resolver, error) {
	var cookie string
	if cfg.CookiesFile != "" {
		header, err := tube.LoadCookieHeader(cfg.CookiesFile)
		if err != nil {
			return nil, err
		}
		cookie = header
		slog.Info("using cookies file", slog.String("path", cfg.CookiesFile))
	}

	outbound := rate.Limit(cfg.RequestsPerSecond)
	if outbound <= 0 {
		outbound = rate.Inf
	}
	limiter := rate.NewLimiter(outbound, 1)
	httpClient := &http.Client{Timeout: cfg.StrategyTimeout.Std()}

	captions := tube.NewClient(httpClient, limiter, cookie)
	fallback := ytdlp.New(cfg.YtdlpPath, cfg.SubLangs)

	return resolver.New(resolver.Config{
		AttemptTimeout:   cfg.StrategyTimeout.Std(),
		TransientRetries: cfg.TransientRetries,
		DedupeInflight:   cfg.DedupeInflight,
	}, captions, fallback), nil
}
