// Package middleware provides HTTP middleware for the streamable-http and SSE
// transports: request metrics, security headers, body size limits and CORS.
package middleware
