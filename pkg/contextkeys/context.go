package contextkeys

type ContextKey string

const (
	// DBContextKey carries the *gorm.DB (pool or transaction) through the
	// request context. Set by middleware.DBMiddleware, read by handlers.
	DBContextKey ContextKey = "db"
)
