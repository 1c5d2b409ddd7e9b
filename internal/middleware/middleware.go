// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as bearer authentication (Clerk or HS256 JWT), request
// logging, CORS, rate limiting, tracing and panic recovery.
package middleware
