package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the authenticated *models.User in the gin context
	ContextKeyUser = "current_user"
	// ContextKeyToken holds the token key used to authenticate the request, if any
	ContextKeyToken = "auth_token"
	// ContextKeyContact and ContextKeyTask hold the entity loaded for an :id route
	ContextKeyContact = "contact"
	ContextKeyTask    = "task"

	SessionCookieName = "taskboard_session"

	// AuthHeaderScheme is the scheme expected in the Authorization header
	AuthHeaderScheme = "Token"
)

const (
	MinPasswordLength = 8
	// PasswordSpecialCharacters lists the characters accepted by the special character rule
	PasswordSpecialCharacters = "!@#$%^&*()-_+=<>?/|{}[]:;'"
)

const (
	MinPageSize     = 1
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Guest identity
const (
	GuestUsername  = "guest"
	GuestFirstName = "Guest"
	GuestLastName  = "User"
	GuestEmail     = "guest@user.de"
	AdminUsername  = "admin"
)

// PlaceholderPhone is stored on contacts provisioned for new accounts
const PlaceholderPhone = "Please add your number"

const MaxAIGeneratedTasks = 20

// DateLayout is the wire format of task dates
const DateLayout = "2006-01-02"
