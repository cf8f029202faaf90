package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindService, "service"},
		{KindConnection, "connection"},
		{KindAuthentication, "authentication"},
		{KindRateLimit, "rate_limit"},
		{KindInvalidSpec, "invalid_spec"},
		{KindNotFound, "not_found"},
		{KindParse, "parse"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestWrap(t *testing.T) {
	base := New("connection refused")
	err := Wrap(base, "transport", "Execute", "POST data.csv")

	require.Error(t, err)
	assert.Equal(t, "transport.Execute: POST data.csv failed: connection refused", err.Error())
	assert.True(t, Is(err, base))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "transport", "Execute", "anything"))
}

func TestClassifiedWithoutCause(t *testing.T) {
	// Constructors accept a nil cause; the action becomes the message.
	err := Service("transport", "Execute", "status 503", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.True(t, IsService(err))
}

func TestClassification(t *testing.T) {
	base := New("boom")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		kind  Kind
	}{
		{"authentication", Authentication("transport", "Execute", "status 401", base), IsAuthentication, KindAuthentication},
		{"rate limit", RateLimit("transport", "Execute", "status 429", 2*time.Second, base), IsRateLimit, KindRateLimit},
		{"service", Service("transport", "Execute", "status 503", base), IsService, KindService},
		{"connection", Connection("transport", "Execute", "dial", base), IsConnection, KindConnection},
		{"invalid spec", InvalidSpec("census", "Fetch", "empty regions", ErrEmptyRegions), IsInvalidSpec, KindInvalidSpec},
		{"not found", NotFound("census", "DatasetAttribution", "CA99", ErrUnknownDataset), IsNotFound, KindNotFound},
		{"parse", Parse("frame", "ParseCSV", "bad header", base), IsParse, KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.NotEmpty(t, HintOf(tt.err), "every classified error carries a hint")
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := Authentication("transport", "Execute", "status 403", New("forbidden"))
	wrapped := fmt.Errorf("fetch CA16: %w", err)

	assert.True(t, IsAuthentication(wrapped))
	assert.Equal(t, HintObtainKey, HintOf(wrapped))
}

func TestRateLimitWait(t *testing.T) {
	err := RateLimit("transport", "Execute", "status 429", 7*time.Second, New("too many requests"))

	assert.Equal(t, 7*time.Second, WaitOf(err))
	assert.Zero(t, WaitOf(Service("t", "m", "a", New("x"))))
	assert.Zero(t, WaitOf(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Service("t", "m", "a", New("503"))))
	assert.True(t, IsRetryable(Connection("t", "m", "a", New("refused"))))
	assert.False(t, IsRetryable(Authentication("t", "m", "a", New("401"))))
	assert.False(t, IsRetryable(RateLimit("t", "m", "a", time.Second, New("429"))))
	assert.False(t, IsRetryable(InvalidSpec("t", "m", "a", ErrEmptyRegions)))
	assert.False(t, IsRetryable(New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestKindOfUnclassified(t *testing.T) {
	// Unknown errors default to service kind so callers treat them as
	// transient upstream trouble.
	assert.Equal(t, KindService, KindOf(New("mystery")))
}
