package constants

import "time"

const (
	// PipelinePath is the pipeline endpoint path relative to the base URL.
	PipelinePath = "/v2/pipeline"

	// DefaultTimeout bounds a single pipeline round-trip when the caller's
	// context carries no deadline of its own.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)
