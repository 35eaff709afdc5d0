package constants

const (
	// ContextKeyUserID is shared by the session store and the gin context.
	ContextKeyUserID = "user_id"
	// ContextKeyTask holds the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"

	SessionCookieName = "focusflow_session"

	MinPasswordLength = 6

	DefaultTaskTitle = "Untitled Task"

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200

	// MaxActivityEntries caps the board's recent-history buffer.
	MaxActivityEntries = 20
)
