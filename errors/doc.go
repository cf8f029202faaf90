// Package errors provides the standardized error taxonomy for cancensus-go.
//
// # Overview
//
// The errors package implements a five-kind error classification system for
// census API clients: Authentication (bad credential, never retried),
// RateLimit (server throttling, carries the server-imposed wait), Service
// (transient upstream failure, retryable), Connection (network failure,
// retryable), and InvalidSpec (unusable request, never reaches the network).
// Two auxiliary kinds, NotFound and Parse, cover catalog lookups and
// malformed upstream payloads.
//
// Classification enables callers to branch on machine-checkable kinds
// instead of matching error strings, and every error carries a structured
// remediation hint describing what the caller can do about it.
//
// # Quick Start
//
// Construct a classified error with a hint:
//
//	return errors.Authentication("transport", "Execute",
//	    "server rejected credential", errors.HintObtainKey, err)
//
// Check classification at the call site:
//
//	if errors.IsRateLimit(err) {
//	    wait := errors.WaitOf(err)
//	    // back off for wait before trying again
//	}
//
// The package integrates with Go's standard error handling: all errors
// support errors.Is, errors.As, and wrapping chains, and Wrap produces the
// "component.method: action failed: %w" context pattern used across the
// module.
package errors
