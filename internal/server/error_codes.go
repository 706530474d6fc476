package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument    = 1000
	ErrCodeInvalidJSON        = 1001
	ErrCodeRequestTooLarge    = 1002
	ErrCodeInvalidID          = 1003
	ErrCodeMissingRequired    = 1004
	ErrCodeInvalidEventType   = 1005
	ErrCodeInvalidKeyMaterial = 1006
	ErrCodeInvalidMetadata    = 1007

	// Domain state (2xxx)
	ErrCodeActorNotFound  = 2001
	ErrCodeObjectNotFound = 2002
	ErrCodeBatchNotFound  = 2003
	ErrCodeProofNotFound  = 2004
	ErrCodeActorExists    = 2101
	ErrCodeChainConflict  = 2102
	ErrCodeInvalidState   = 2103

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeAnchorFailed = 4003
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeObjectNotFound
	case 409:
		return ErrCodeChainConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
