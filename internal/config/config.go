// Package config loads service configuration from a YAML file with
// environment variable overrides. Everything has a sane default, so a
// missing file is not an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written as "30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	// ListenAddr is the HTTP bind address. Env: TUBETEXT_ADDR.
	ListenAddr string `yaml:"listen_addr"`
	// CookiesFile is an optional Netscape cookies.txt used for YouTube
	// requests. Env: TUBETEXT_COOKIES.
	CookiesFile string `yaml:"cookies_file"`
	// SubLangs are the subtitle languages requested from yt-dlp.
	SubLangs []string `yaml:"sub_langs"`
	// StrategyTimeout bounds each extraction attempt.
	StrategyTimeout Duration `yaml:"strategy_timeout"`
	// TransientRetries retries a strategy this many extra times on
	// transient failures before falling back. 0 = fall back immediately.
	TransientRetries int `yaml:"transient_retries"`
	// DedupeInflight collapses concurrent requests for the same video.
	DedupeInflight bool `yaml:"dedupe_inflight"`
	// YtdlpPath is the yt-dlp binary. Env: TUBETEXT_YTDLP.
	YtdlpPath string `yaml:"ytdlp_path"`
	// RequestsPerSecond limits outbound calls to YouTube.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		SubLangs:          []string{"en"},
		StrategyTimeout:   Duration(30 * time.Second),
		TransientRetries:  0,
		DedupeInflight:    true,
		YtdlpPath:         "yt-dlp",
		RequestsPerSecond: 2,
	}
}

// Load reads path into a Config. A missing file yields the defaults;
// environment variables override either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TUBETEXT_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TUBETEXT_COOKIES"); v != "" {
		cfg.CookiesFile = v
	}
	if v := os.Getenv("TUBETEXT_YTDLP"); v != "" {
		cfg.YtdlpPath = v
	}
}
