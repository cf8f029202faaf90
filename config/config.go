package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/pkg/retry"
)

// DefaultBaseURL is the census API endpoint used when none is configured.
const DefaultBaseURL = "https://censusmapper.ca/api/v1/"

// Config holds all client configuration. It is passed explicitly into the
// transport and cache constructors; there is no ambient process-wide state.
type Config struct {
	// APIKey authenticates requests against the census service.
	APIKey string

	// BaseURL is the census service endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// CacheDir is the root of the durable response cache. Defaults to a
	// "cancensus" directory under the user cache dir.
	CacheDir string

	// Timeout bounds a single HTTP attempt, not the whole retry loop.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RateLimit is the sustained outbound request rate per second. Zero
	// selects the default; set DisableRateLimit to turn limiting off.
	RateLimit float64

	// RateBurst is the rate limiter burst size.
	RateBurst int

	// DisableRateLimit turns off client-side rate limiting entirely.
	DisableRateLimit bool

	// Retry configures the transport backoff policy.
	Retry retry.Config
}

// Default returns the configuration used when a field is left zero.
// The API key has no default; it must be supplied by the caller.
func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		CacheDir:  defaultCacheDir(),
		Timeout:   30 * time.Second,
		UserAgent: "cancensus-go",
		RateLimit: 5,
		RateBurst: 10,
		Retry:     retry.DefaultConfig(),
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "cancensus")
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if !c.DisableRateLimit && c.RateLimit == 0 && c.RateBurst == 0 {
		c.RateLimit = d.RateLimit
		c.RateBurst = d.RateBurst
	}
	if c.Retry == (retry.Config{}) {
		c.Retry = d.Retry
	}
	return c
}

// Validate checks the configuration for errors. A missing API key is the
// most common misconfiguration and gets the dedicated remediation hint.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.Authentication("config", "Validate", "api key is empty", errors.ErrMissingAPIKey)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.InvalidSpec("config", "Validate",
			fmt.Sprintf("base url %q is not an http(s) URL", c.BaseURL), nil)
	}
	if c.Timeout < 0 {
		return errors.InvalidSpec("config", "Validate", "timeout cannot be negative", nil)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.InvalidSpec("config", "Validate", "rate limit settings cannot be negative", nil)
	}
	return nil
}

// fileConfig is the YAML shape of a config file. Durations are plain
// numbers (seconds for the request timeout, milliseconds for backoff
// delays), converted on load.
type fileConfig struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	CacheDir         string  `yaml:"cache_dir"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	UserAgent        string  `yaml:"user_agent"`
	RateLimit        float64 `yaml:"rate_limit"`
	RateBurst        int     `yaml:"rate_burst"`
	DisableRateLimit bool    `yaml:"disable_rate_limit"`
	Retry            struct {
		MaxAttempts    int     `yaml:"max_attempts"`
		InitialDelayMS int     `yaml:"initial_delay_ms"`
		MaxDelayMS     int     `yaml:"max_delay_ms"`
		Multiplier     float64 `yaml:"multiplier"`
		AddJitter      bool    `yaml:"add_jitter"`
	} `yaml:"retry"`
}

// LoadFile reads a YAML configuration file and fills defaults. The result
// is validated; a config file without an api_key is rejected here rather
// than at first network use.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config", "LoadFile", "read "+path)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, errors.Parse("config", "LoadFile", "decode "+path, err)
	}
	c := Config{
		APIKey:           fc.APIKey,
		BaseURL:          fc.BaseURL,
		CacheDir:         fc.CacheDir,
		Timeout:          time.Duration(fc.TimeoutSeconds) * time.Second,
		UserAgent:        fc.UserAgent,
		RateLimit:        fc.RateLimit,
		RateBurst:        fc.RateBurst,
		DisableRateLimit: fc.DisableRateLimit,
		Retry: retry.Config{
			MaxAttempts:  fc.Retry.MaxAttempts,
			InitialDelay: time.Duration(fc.Retry.InitialDelayMS) * time.Millisecond,
			MaxDelay:     time.Duration(fc.Retry.MaxDelayMS) * time.Millisecond,
			Multiplier:   fc.Retry.Multiplier,
			AddJitter:    fc.Retry.AddJitter,
		},
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
