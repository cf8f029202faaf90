package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshkol/cancensus-go/errors"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.NotEmpty(t, c.CacheDir)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 3, c.Retry.MaxAttempts)
	assert.Empty(t, c.APIKey, "no default credential")
}

func TestWithDefaults_PreservesExplicitValues(t *testing.T) {
	c := Config{
		APIKey:   "CensusMapper_abc123",
		BaseURL:  "http://localhost:9999/api/v1/",
		CacheDir: "/tmp/census-cache",
		Timeout:  5 * time.Second,
	}.WithDefaults()

	assert.Equal(t, "http://localhost:9999/api/v1/", c.BaseURL)
	assert.Equal(t, "/tmp/census-cache", c.CacheDir)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, "cancensus-go", c.UserAgent)
	assert.NotZero(t, c.RateLimit)
}

func TestWithDefaults_DisableRateLimitSkipsRateDefaults(t *testing.T) {
	c := Config{APIKey: "key", DisableRateLimit: true}.WithDefaults()

	assert.True(t, c.DisableRateLimit)
	assert.Zero(t, c.RateLimit)
	assert.Zero(t, c.RateBurst)
}

func TestValidate(t *testing.T) {
	valid := Config{APIKey: "key"}.WithDefaults()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr func(error) bool
	}{
		{"valid", func(*Config) {}, nil},
		{"missing api key", func(c *Config) { c.APIKey = "  " }, errors.IsAuthentication},
		{"bad base url", func(c *Config) { c.BaseURL = "ftp://wrong" }, errors.IsInvalidSpec},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, errors.IsInvalidSpec},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, errors.IsInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				assert.NotEmpty(t, errors.HintOf(err))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cancensus.yaml")
	content := `api_key: CensusMapper_abc123
base_url: http://localhost:9999/api/v1/
cache_dir: ` + dir + `
timeout_seconds: 10
rate_limit: 2
rate_burst: 4
retry:
  max_attempts: 5
  initial_delay_ms: 100
  max_delay_ms: 2000
  multiplier: 2.0
  add_jitter: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CensusMapper_abc123", c.APIKey)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 5, c.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, c.Retry.InitialDelay)
	assert.True(t, c.Retry.AddJitter)
}

func TestLoadFile_MissingKeyRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cancensus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://example.com/\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cancensus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- broken"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
