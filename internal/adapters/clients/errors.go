// Package clients provides the resilient HTTP client used for upstream APIs.
package clients

import "errors"

// Transport-level failures. Adapters built on Client translate these into
// domain errors before they leave the adapter layer.
var (
	// ErrCircuitOpen means the breaker rejected the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once all attempts failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
