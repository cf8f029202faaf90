// Package retry implements bounded exponential backoff with jitter for the
// transport layer.
//
// The census service occasionally returns transient 5xx responses, and
// network failures are expected on large geometry downloads. Do runs an
// operation up to MaxAttempts times, doubling the delay between attempts
// (capped at MaxDelay) and adding up to 25% random jitter so that several
// client processes restarted together do not hammer the service in
// lockstep.
//
// Errors wrapped with NonRetryable stop the loop immediately. This is how
// authentication failures bypass the retry budget: retrying cannot fix a
// bad credential.
//
// All sleeps observe context cancellation, so an abandoned fetch stops
// waiting as soon as its context is cancelled.
package retry
