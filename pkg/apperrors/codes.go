package apperrors

// ErrorCode identifies an error class across service boundaries.
type ErrorCode string

const (
	// System and unknown errors
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business-logic errors
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	// Payment reconciliation errors
	CodeSignatureMismatch  ErrorCode = "SIGNATURE_MISMATCH"
	CodeNotCompleted       ErrorCode = "NOT_COMPLETED"
	CodeAlreadyRegistered  ErrorCode = "ALREADY_REGISTERED"
	CodeGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"

	// Authentication and authorization
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)
