// Package worker provides a bounded batch-processing pool. It exists to
// keep concurrent request fan-out to the census service capped: the
// transport's rate limiter bounds requests per second, the pool bounds
// requests in flight.
package worker
