package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Portal
	BaseURL     string
	SearchPath  string
	DetailPath  string
	Career      string // ACAD_CAREER sent on detail requests
	Campus      string // "UP", a campus name, or "all"
	Term        string // human-readable term label stamped on records
	UserAgent   string
	Proxies     []string
	SessionName string
	HTTPTimeout time.Duration

	// Pipeline
	RateLimitRPS   float64
	RateLimitBurst int
	SubjectWorkers int
	DetailWorkers  int
	MaxRetries     int

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64
}

// fileConfig is the YAML shape of the optional --config file.
type fileConfig struct {
	LogLevel       string  `yaml:"log_level"`
	BaseURL        string  `yaml:"base_url"`
	SearchPath     string  `yaml:"search_path"`
	DetailPath     string  `yaml:"detail_path"`
	Career         string  `yaml:"career"`
	Campus         string  `yaml:"campus"`
	Term           string  `yaml:"term"`
	UserAgent      string  `yaml:"user_agent"`
	Proxies        []string `yaml:"proxies"`
	Timeout        string  `yaml:"timeout"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	SubjectWorkers int     `yaml:"subject_workers"`
	DetailWorkers  int     `yaml:"detail_workers"`
	MaxRetries     int     `yaml:"max_retries"`
}

// Load builds a Config by combining defaults, a .env file, environment
// variables, an optional YAML config file, and CLI flags (in that order,
// later sources winning). Caller should pass the root *cobra.Command so
// flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		BaseURL:           DefaultBaseURL,
		SearchPath:        DefaultSearchPath,
		DetailPath:        DefaultDetailPath,
		Career:            DefaultCareer,
		Campus:            DefaultCampus,
		UserAgent:         DefaultUserAgent,
		HTTPTimeout:       DefaultHTTPTimeout,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		SubjectWorkers:    DefaultSubjectWorkers,
		DetailWorkers:     DefaultDetailWorkers,
		MaxRetries:        DefaultMaxRetries,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
	}

	// Pull a local .env into the process environment if present
	_ = godotenv.Load()

	applyEnv(cfg)

	// Optional YAML config file
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			if path := f.Value.String(); path != "" {
				if err := applyFile(cfg, path); err != nil {
					return nil, fmt.Errorf("config file: %w", err)
				}
			}
		}
	}

	applyFlags(cfg, cmd)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COURSECRAWL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("COURSECRAWL_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("COURSECRAWL_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("COURSECRAWL_TERM"); v != "" {
		cfg.Term = v
	}
	if v := os.Getenv("COURSECRAWL_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.SearchPath != "" {
		cfg.SearchPath = fc.SearchPath
	}
	if fc.DetailPath != "" {
		cfg.DetailPath = fc.DetailPath
	}
	if fc.Career != "" {
		cfg.Career = fc.Career
	}
	if fc.Campus != "" {
		cfg.Campus = fc.Campus
	}
	if fc.Term != "" {
		cfg.Term = fc.Term
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if len(fc.Proxies) > 0 {
		cfg.Proxies = fc.Proxies
	}
	if fc.Timeout != "" {
		if d, err := time.ParseDuration(fc.Timeout); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if fc.RateLimitRPS > 0 {
		cfg.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		cfg.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.SubjectWorkers > 0 {
		cfg.SubjectWorkers = fc.SubjectWorkers
	}
	if fc.DetailWorkers > 0 {
		cfg.DetailWorkers = fc.DetailWorkers
	}
	if fc.MaxRetries > 0 {
		cfg.MaxRetries = fc.MaxRetries
	}

	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	if f := cmd.Flags().Lookup("base-url"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.BaseURL = s
		}
	}
	if f := cmd.Flags().Lookup("user-agent"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.UserAgent = s
		}
	}
	if f := cmd.Flags().Lookup("proxy"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.Proxies = splitList(s)
		}
	}
	if f := cmd.Flags().Lookup("session"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.SessionName = s
		}
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		if d, err := time.ParseDuration(f.Value.String()); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		if f.Value.String() == "true" {
			cfg.JSONLog = true
		}
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
	}

	// Command-local flags, present only when the running command defines them
	changed := func(name string) (string, bool) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return f.Value.String(), true
		}
		return "", false
	}

	if v, ok := changed("term"); ok {
		cfg.Term = v
	}
	if v, ok := changed("campus"); ok {
		cfg.Campus = v
	}
	if v, ok := changed("rate-limit"); ok {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = rps
		}
	}
	if v, ok := changed("burst"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v, ok := changed("retries"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v, ok := changed("subject-workers"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SubjectWorkers = n
		}
	}
	if v, ok := changed("detail-workers"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DetailWorkers = n
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
