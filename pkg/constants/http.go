// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "Authorization"

	// AcceptHeader is the header name for the accepted response media type
	AcceptHeader string = "Accept"

	// ContentTypeHeader is the header name for the request body media type
	ContentTypeHeader string = "Content-Type"

	// BearerPrefix precedes the access token in the authorization header
	BearerPrefix string = "Bearer "

	// ContentTypeJSON is the only media type the Zoom API speaks
	ContentTypeJSON string = "application/json"
)

// Zoom rate limit response headers
const (
	// RateLimitTypeHeader names the limit category that was hit
	RateLimitTypeHeader string = "X-Ratelimit-Type"

	// RateLimitRemainingHeader is the number of requests left in the daily quota
	RateLimitRemainingHeader string = "X-Ratelimit-Remaining"

	// RetryAfterHeader is when the limited call may be retried
	RetryAfterHeader string = "Retry-After"

	// RateLimitTypeQPS is the per-second limit category
	RateLimitTypeQPS string = "QPS"
)
