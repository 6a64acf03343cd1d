package response

// Business status codes.
const (
	CodeSuccess = 0
	CodeError   = 1

	// User module 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// Order module 200xx
	ErrOrderNotFound    = 20001
	ErrOrderNotOwned    = 20002
	ErrOrderNotPayable  = 20003
	ErrUnknownMethod    = 20004
	ErrConflict         = 20005
	ErrNotFound         = 20006

	// Payment module 300xx
	ErrGatewayUpstream  = 30001
	ErrProofOutstanding = 30002
	ErrProofReviewed    = 30003

	// Download module 400xx
	ErrLinkInvalid  = 40001
	ErrLinkExpired  = 40002
	ErrNotEntitled  = 40003

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
