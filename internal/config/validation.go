package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be > 0 requests/second")
	}
	if c.SubjectWorkers <= 0 || c.SubjectWorkers > DefaultMaxWorkers {
		return fmt.Errorf("subject workers must be between 1 and %d", DefaultMaxWorkers)
	}
	if c.DetailWorkers <= 0 || c.DetailWorkers > DefaultMaxWorkers {
		return fmt.Errorf("detail workers must be between 1 and %d", DefaultMaxWorkers)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	return nil
}
