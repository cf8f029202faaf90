// Package transport wraps outbound HTTP calls to the census service with
// pooled connections, client-side rate limiting, bounded retry with
// jittered exponential backoff, and the classified error taxonomy.
//
// Retry behavior by failure class:
//
//   - Connection failures and 5xx responses retry up to the configured
//     attempt budget with exponential backoff and jitter.
//   - 429 responses honor the server's Retry-After once: the transport
//     sleeps exactly that long and retries a single time; a second 429
//     surfaces a rate-limit error carrying the wait.
//   - 401/403 responses fail immediately as authentication errors.
//     Retrying cannot fix a bad credential.
//   - Remaining 4xx responses fail immediately as invalid-spec errors.
//
// Rate limiting is per-process and in-memory. Multiple processes sharing
// one credential are not coordinated; each may independently observe 429
// from the service.
package transport
