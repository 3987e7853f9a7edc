package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

	// LionPath public class search. Both paths hang off the same PeopleSoft
	// servlet root; other institutions can point BaseURL elsewhere.
	DefaultBaseURL    = "https://public.lionpath.psu.edu"
	DefaultSearchPath = "/psc/CSPRD/EMPLOYEE/SA/c/PE_SR175_PUBLIC.PE_SR175_CLS_SRCH.GBL"
	DefaultDetailPath = "/psc/CSPRD/EMPLOYEE/SA/c/SA_LEARNER_SERVICES.SSR_SSENRL_DETAIL.GBL"

	DefaultCareer = "UGRD"
	DefaultCampus = "UP"

	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRateLimitRPS   = 10.0
	DefaultRateLimitBurst = 5
	DefaultSubjectWorkers = 8
	DefaultDetailWorkers  = 16
	DefaultMaxWorkers     = 64
	DefaultMaxRetries     = 3

	DefaultCacheTTL          = 10 * time.Minute
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
)
