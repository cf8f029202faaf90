// Package errors provides standardized error handling patterns for cancensus-go.
// It includes error classification, standard error variables, and helper functions
// for consistent error wrapping across the client.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for handling purposes.
type Kind int

const (
	// KindService represents transient upstream failures (5xx-class) that may be retried.
	KindService Kind = iota
	// KindConnection represents network-level failures that may be retried.
	KindConnection
	// KindAuthentication represents credential failures that must never be retried.
	KindAuthentication
	// KindRateLimit represents server-imposed throttling.
	KindRateLimit
	// KindInvalidSpec represents an unusable request that must never reach the network.
	KindInvalidSpec
	// KindNotFound represents a lookup miss in a catalog (dataset, region, vector).
	KindNotFound
	// KindParse represents an upstream payload the client could not interpret.
	KindParse
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindConnection:
		return "connection"
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindInvalidSpec:
		return "invalid_spec"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Remediation hints reused across the client. Hints are part of the error
// contract: every classified error carries one.
const (
	HintObtainKey      = "obtain a CensusMapper API key at https://censusmapper.ca/users/sign_up and pass it in config.Config.APIKey"
	HintReduceRequest  = "reduce the request size (fewer regions or vectors) or wait before retrying"
	HintRetryLater     = "the census service is temporarily unavailable; retry later"
	HintCheckNetwork   = "check network connectivity and the configured base URL"
	HintFixSpec        = "correct the request spec before calling again"
	HintCheckCatalog   = "list the catalog first to discover valid identifiers"
	HintReportUpstream = "the upstream response shape changed; report the payload if it persists"
)

// Standard error variables for common conditions.
var (
	ErrMissingAPIKey     = errors.New("missing API key")
	ErrEmptyRegions      = errors.New("empty region selector")
	ErrUnknownDataset    = errors.New("unknown dataset")
	ErrUnknownLevel      = errors.New("unknown aggregation level")
	ErrKeyNotFound       = errors.New("cache key not found")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrResponseTruncated = errors.New("response truncated")
)

// Error is a classified error carrying a machine-checkable Kind and a
// structured remediation Hint. Wait is non-zero only for KindRateLimit and
// holds the server-supplied retry-after duration.
type Error struct {
	Kind      Kind
	Component string
	Operation string
	Hint      string
	Wait      time.Duration
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap creates an error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// newClassified builds a classified error wrapping err with component context.
func newClassified(kind Kind, component, method, action, hint string, err error) *Error {
	if err == nil {
		err = fmt.Errorf("%s.%s: %s", component, method, action)
	} else {
		err = Wrap(err, component, method, action)
	}
	return &Error{
		Kind:      kind,
		Component: component,
		Operation: method,
		Hint:      hint,
		Err:       err,
	}
}

// Authentication classifies err as a credential failure. Never retried.
func Authentication(component, method, action string, err error) error {
	return newClassified(KindAuthentication, component, method, action, HintObtainKey, err)
}

// RateLimit classifies err as server-imposed throttling, attaching the
// server-supplied wait duration.
func RateLimit(component, method, action string, wait time.Duration, err error) error {
	e := newClassified(KindRateLimit, component, method, action, HintReduceRequest, err)
	e.Wait = wait
	return e
}

// Service classifies err as a transient upstream failure.
func Service(component, method, action string, err error) error {
	return newClassified(KindService, component, method, action, HintRetryLater, err)
}

// Connection classifies err as a network-level failure.
func Connection(component, method, action string, err error) error {
	return newClassified(KindConnection, component, method, action, HintCheckNetwork, err)
}

// InvalidSpec classifies err as an unusable request.
func InvalidSpec(component, method, action string, err error) error {
	return newClassified(KindInvalidSpec, component, method, action, HintFixSpec, err)
}

// NotFound classifies err as a catalog lookup miss.
func NotFound(component, method, action string, err error) error {
	return newClassified(KindNotFound, component, method, action, HintCheckCatalog, err)
}

// Parse classifies err as a malformed upstream payload.
func Parse(component, method, action string, err error) error {
	return newClassified(KindParse, component, method, action, HintReportUpstream, err)
}

// KindOf returns the kind of a classified error, or KindService for
// unclassified errors (the safe default: treat unknown failures as
// retryable upstream trouble).
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindService
}

// HintOf returns the remediation hint attached to err, or "" if none.
func HintOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Hint
	}
	return ""
}

// WaitOf returns the server-supplied wait for a rate-limit error, 0 otherwise.
func WaitOf(err error) time.Duration {
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == KindRateLimit {
		return ce.Wait
	}
	return 0
}

func is(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

// IsAuthentication checks if an error is a credential failure.
func IsAuthentication(err error) bool { return is(err, KindAuthentication) }

// IsRateLimit checks if an error is server-imposed throttling.
func IsRateLimit(err error) bool { return is(err, KindRateLimit) }

// IsService checks if an error is a transient upstream failure.
func IsService(err error) bool { return is(err, KindService) }

// IsConnection checks if an error is a network-level failure.
func IsConnection(err error) bool { return is(err, KindConnection) }

// IsInvalidSpec checks if an error is an unusable request.
func IsInvalidSpec(err error) bool { return is(err, KindInvalidSpec) }

// IsNotFound checks if an error is a catalog lookup miss.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsParse checks if an error is a malformed upstream payload.
func IsParse(err error) bool { return is(err, KindParse) }

// IsRetryable reports whether the transport may retry after err.
// Only transient upstream and network failures qualify.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == KindService || ce.Kind == KindConnection
	}
	return false
}

// Re-exports so callers depending on this package do not also need the
// standard library errors package.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return errors.New(text) }
