package errcode

import "net/http"

// Predefined API errors shared across transports.
var (
	// ErrRateLimitExceeded is the single rejection shape for every quota
	// scope (ip, user, action). Action-scoped rejections add action and
	// limit details via WithDetail.
	ErrRateLimitExceeded = New(
		"RATE_LIMIT_EXCEEDED",
		"rate limit exceeded, retry later",
		http.StatusTooManyRequests,
	)

	// ErrInternal is the generic fallback for unexpected server errors
	ErrInternal = New(
		"INTERNAL_ERROR",
		"internal server error",
		http.StatusInternalServerError,
	)
)
