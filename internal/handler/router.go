package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/handler/api"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups the API handlers the router mounts.
type Handlers struct {
	Cart         *api.CartHandler
	Promotion    *api.PromotionHandler
	Booking      *api.BookingHandler
	AdminBooking *api.AdminBookingHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	adminOnly := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		addRoutes(apiGroup.Group("/cart"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Cart.Get},
			{Method: http.MethodDelete, Path: "", Handler: h.Cart.Clear},
			{Method: http.MethodPost, Path: "/items", Handler: h.Cart.AddItem},
			{Method: http.MethodPatch, Path: "/items/:lineId", Handler: h.Cart.UpdateQuantity},
			{Method: http.MethodDelete, Path: "/items/:lineId", Handler: h.Cart.RemoveItem},
			{Method: http.MethodPost, Path: "/merge", Handler: h.Cart.Merge},
		})

		addRoutes(apiGroup.Group("/promotions"), []route{
			{Method: http.MethodPost, Path: "/validate", Handler: h.Promotion.Validate},
			{Method: http.MethodPost, Path: "/:code/apply", Handler: h.Promotion.Apply, Mw: []gin.HandlerFunc{adminOnly}},
		})

		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/checkout", Handler: h.Booking.Checkout},
		})

		addRoutes(apiGroup.Group("/bookings"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Booking.Create},
			{Method: http.MethodGet, Path: "", Handler: h.Booking.ListMine},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(adminOnly)
		{
			addRoutes(admin.Group("/bookings"), []route{
				{Method: http.MethodGet, Path: "", Handler: h.AdminBooking.List},
				{Method: http.MethodPatch, Path: "/:id/status", Handler: h.AdminBooking.TransitionStatus},
				{Method: http.MethodPatch, Path: "/:id/payment", Handler: h.AdminBooking.TransitionPayment},
				{Method: http.MethodPatch, Path: "/:id/staff", Handler: h.AdminBooking.AssignStaff},
			})
			addRoutes(admin.Group("/promotions"), []route{
				{Method: http.MethodGet, Path: "", Handler: h.Promotion.List},
				{Method: http.MethodPost, Path: "", Handler: h.Promotion.Create},
				{Method: http.MethodPut, Path: "/:code", Handler: h.Promotion.Update},
				{Method: http.MethodPost, Path: "/:code/deactivate", Handler: h.Promotion.Deactivate},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
