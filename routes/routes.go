package routes

import (
	"localchef-api/handlers"
	"localchef-api/metrics"
	"localchef-api/middleware"
	"localchef-api/models"

	"github.com/gin-gonic/gin"
)

// Options carries the middleware the routes are wrapped in
type Options struct {
	Tokens  *middleware.TokenIssuer
	Limiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, o Options) {
	gate := middleware.Gate(o.Tokens)
	limit := func(c *gin.Context) { c.Next() }
	if o.Limiter != nil {
		limit = o.Limiter.Handler()
	}

	// ── Service ────────────────────────────────────────────────────
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/state-machine", h.GetStateMachineInfo)

	// ── Session ────────────────────────────────────────────────────
	r.POST("/jwt", limit, h.IssueToken)

	// ── Orders & payments (public) ─────────────────────────────────
	r.POST("/orders", limit, h.PlaceOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/:id/history", h.OrderHistory)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.DELETE("/orders/:id", h.DeleteOrder)
	r.POST("/payments", limit, h.RecordPayment)
	r.POST("/create-checkout-session", limit, h.CreateCheckoutSession)

	// ── Users & role requests ──────────────────────────────────────
	r.POST("/users", limit, h.CreateUser)
	r.POST("/role-request", limit, h.SubmitRoleRequest)

	gated := r.Group("/")
	gated.Use(gate)
	{
		gated.GET("/users", h.ListUsers)
		gated.GET("/users/role/:email", h.GetUserRole)
		gated.PUT("/users/role/:id", h.SetUserRole)
		gated.PATCH("/role-request/:id", h.ResolveRoleRequest)
		gated.GET("/role-requests", h.ListRoleRequests)
		gated.GET("/statistics", h.Statistics)
	}

	// ── Admin ──────────────────────────────────────────────────────
	admin := r.Group("/admin")
	admin.Use(gate, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminListOrders)
	}

	// ── Catalog ────────────────────────────────────────────────────
	r.GET("/meals", h.ListMeals)
	r.GET("/meals/:id", h.GetMeal)
	r.POST("/meals", limit, h.CreateMeal)
	r.GET("/categories", h.ListCategories)
	r.GET("/chefs", h.ListChefs)
	r.GET("/reviews", h.ListReviews)
	r.POST("/reviews", limit, h.CreateReview)
	r.DELETE("/reviews/:id", h.DeleteReview)
	r.GET("/favorites", h.ListFavorites)
	r.POST("/favorites", limit, h.AddFavorite)
}
