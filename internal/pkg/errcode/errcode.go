package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrValidationFailed
	ErrQAGateFailed
	ErrPersistence
	ErrJobNotClaimable
	ErrProviderUnavailable
	ErrInternal
)
