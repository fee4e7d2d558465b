package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Business logic errors
	ErrCodeSubmitFailed  = "submit_failed"
	ErrCodePublishFailed = "publish_failed"
	ErrCodeResetFailed   = "reset_failed"
	ErrCodeRankingFailed = "ranking_fetch_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
