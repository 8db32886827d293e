package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Server errors (5xx). INCONSISTENT_STATE marks a broken settlement
	// invariant; it is never corrected silently and always aborts the batch.
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInconsistentState = "INCONSISTENT_STATE"
)
