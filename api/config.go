// Package api provides the HTTP API server that fronts the Bedrock runtime
// and the Canvas LMS for workshop clients.
package api

import "time"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// RequestTimeout bounds non-streaming model invocations.
	// Streaming responses are not subject to this timeout.
	RequestTimeout time.Duration
}
