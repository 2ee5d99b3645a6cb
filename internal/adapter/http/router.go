package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Transactions *TransactionHandler
	Approvals    *ApprovalHandler
	Requesters   *RequesterHandler
	Presence     *PresenceHandler
}

// Guards are the route middlewares from the middleware package. Touch and
// Idempotency must come after Auth, Beacon before it.
type Guards struct {
	Beacon      echo.MiddlewareFunc
	Auth        echo.MiddlewareFunc
	Admin       echo.MiddlewareFunc
	Touch       echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, h Handlers, g Guards) {
	e.Validator = NewValidator()

	e.GET("/health", h.Health.Health)

	e.POST("/auth/worker", h.Auth.LoginWorker)
	e.POST("/auth/requester", h.Auth.LoginRequester)
	e.POST("/auth/admin", h.Auth.LoginAdmin)
	e.POST("/auth/logout", h.Auth.Logout, g.Auth)

	e.GET("/presence", h.Presence.Status, g.Auth)
	// unload beacons cannot send headers; no Touch, it would undo the offline
	e.POST("/admin/presence/offline", h.Presence.Offline, g.Beacon, g.Auth, g.Admin)

	me := e.Group("/me", g.Auth, g.Touch)
	me.GET("", h.Auth.Me)
	me.GET("/notifications", h.Presence.Unseen)
	me.POST("/notifications/seen", h.Presence.MarkSeen)

	tx := e.Group("/transactions", g.Auth, g.Touch)
	tx.POST("/take", h.Transactions.SubmitTake, g.Idempotency)
	tx.POST("/return", h.Transactions.SubmitReturn, g.Idempotency)
	tx.GET("", h.Transactions.List)
	tx.GET("/:id", h.Transactions.Get)
	tx.PUT("/:id", h.Transactions.Edit)
	tx.DELETE("/:id", h.Transactions.Delete)
	tx.GET("/:id/receipt", h.Transactions.Receipt)

	refs := e.Group("/references", g.Auth, g.Touch)
	refs.GET("/:ref", h.Transactions.Lookup)
	refs.GET("/:ref/history", h.Transactions.History)

	admin := e.Group("/admin", g.Auth, g.Admin, g.Touch)
	admin.GET("/summary", h.Approvals.Summary)
	admin.GET("/events", h.Presence.Events)
	admin.GET("/transactions/export", h.Approvals.Export)
	admin.GET("/receipts", h.Approvals.BulkReceipt)
	admin.POST("/transactions/:id/approve", h.Approvals.Approve)
	admin.POST("/transactions/:id/decline", h.Approvals.Decline)
	admin.DELETE("/transactions/:id", h.Approvals.Delete)
	admin.DELETE("/transactions", h.Approvals.DeleteAll)
	admin.POST("/presence/heartbeat", h.Presence.Heartbeat)
	admin.GET("/requesters", h.Requesters.List)
	admin.POST("/requesters", h.Requesters.Create)
	admin.PUT("/requesters/:id", h.Requesters.Update)
	admin.DELETE("/requesters/:id", h.Requesters.Delete)
}
