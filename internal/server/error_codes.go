package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004
	ErrCodeMissingRequired = 1009
	ErrCodeInvalidEmail    = 1015
	ErrCodeInvalidPassword = 1016
	ErrCodeEmptyPayload    = 1017
	ErrCodeFieldTooLong    = 1018

	// Domain state (2xxx)
	ErrCodeNotFound         = 2000
	ErrCodeUserNotFound     = 2001
	ErrCodeRoleNotFound     = 2002
	ErrCodePostNotFound     = 2003
	ErrCodeProfileNotFound  = 2004
	ErrCodePackageNotFound  = 2005
	ErrCodeArtifactNotFound = 2006
	ErrCodeAvatarNotFound   = 2007
	ErrCodeUserInactive     = 2008
	ErrCodeRoleInactive     = 2009
	ErrCodeEmailExists      = 2101
	ErrCodeConflict         = 2102

	// Limits (3xxx)
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal      = 4001
	ErrCodeStoreFailure  = 4002
	ErrCodeArchiveFailed = 4003
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
