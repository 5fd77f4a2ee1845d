package errors

// Error codes carried in API responses
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeVerificationFailed  = "VERIFICATION_FAILED"
	CodeEditTokenInvalid    = "EDIT_TOKEN_INVALID"
	CodeEditTokenExpired    = "EDIT_TOKEN_EXPIRED"
	CodeEditTokenUsed       = "EDIT_TOKEN_USED"
	CodeStorageFailed       = "STORAGE_ERROR"
	CodeSubmissionNotFound  = "SUBMISSION_NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
	CodeMalformedSubmission = "MALFORMED_SUBMISSION"
)
