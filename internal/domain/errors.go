package domain

import "errors"

var (
	// ErrProfileNotFound is returned when a user has no stored profile
	ErrProfileNotFound = errors.New("profile not found")

	// ErrGoalNotFound is returned when a user has no stored goal
	ErrGoalNotFound = errors.New("goal not found")

	// ErrMealNotFound is returned when a meal entry does not exist for the user
	ErrMealNotFound = errors.New("meal entry not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidDateRange is returned when a date range contains no days
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidTimezone is returned when a timezone is not a known IANA name
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrTargetUndetermined is returned when the profile or goal is too
	// incomplete to compute a macro target
	ErrTargetUndetermined = errors.New("macro target cannot be determined yet")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrExtractionFailed is returned when the meal extraction service fails
	// or replies with something that cannot be parsed
	ErrExtractionFailed = errors.New("meal analysis failed")

	// ErrExtractionUnavailable is returned when no extraction service is configured
	ErrExtractionUnavailable = errors.New("meal extraction service not configured")
)
