// Package middleware provides gin middleware for the HTTP API: CORS,
// per-client rate limiting and request IDs.
package middleware
