// Package ctxkeys names the fiber Locals shared by middlewares and handlers.
package ctxkeys

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	ParentCtxKey = "parentCtx"
	LogLevelKey  = "log_level"
)
