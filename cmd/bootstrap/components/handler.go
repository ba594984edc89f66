package components

import (
	"spa-storefront/internal/handler"
	"spa-storefront/internal/handler/api"
	"spa-storefront/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
		api.NewPromotionHandler,
		api.NewBookingHandler,
		api.NewAdminBookingHandler,
		middleware.NewAuthMiddleware,
		func(cart *api.CartHandler, promo *api.PromotionHandler, booking *api.BookingHandler, admin *api.AdminBookingHandler) handler.Handlers {
			return handler.Handlers{Cart: cart, Promotion: promo, Booking: booking, AdminBooking: admin}
		},
	),
	fx.Invoke(handler.NewRouter),
)
