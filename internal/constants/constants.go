package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyIdentity  = "identity"
	ContextKeySession   = "forum_session"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "caratemple_session"
)

// Validation limits
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinTitleLength    = 6
	MaxTagLineLength  = 120
	MinBodyLength     = 20
	MinReplyLength    = 3
	MinSearchLength   = 2
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 12
	MaxPageSize     = 50
	SearchLimit     = 10

	// MaxPage keeps the row offset far from integer overflow.
	MaxPage = 100000
)

// Admin dashboard listing sizes
const (
	AdminRecentUsersLimit       = 8
	AdminRecentDiscussionsLimit = 6
	AdminRecentPostsLimit       = 10
)
