package api

import (
	"net/http"

	"spa-storefront/internal/domain/booking"
	reqdto "spa-storefront/internal/handler/dto/request"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	cmds     commands.BookingCommands
	checkout commands.CheckoutCommands
	q        queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, checkout commands.CheckoutCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, checkout: checkout, q: q}
}

// @Summary Create booking
// @Description Book explicit services. A rejected promotion code does not fail the booking; it is reported in promotion_error.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID making retries safe"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Success 200 {object} resdto.CreateBookingResponse "Replayed request"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	result, err := h.cmds.Create(c.Request.Context(), req.ToInput(customerID), key)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// @Summary Checkout cart
// @Description Book every service currently in the caller's cart, then remove those lines from the cart
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID making retries safe"
// @Param request body reqdto.CheckoutRequest true "Appointment and customer details"
// @Success 201 {object} resdto.CreateBookingResponse
// @Success 200 {object} resdto.CreateBookingResponse "Replayed request"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/checkout [post]
func (h *BookingHandler) Checkout(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	result, err := h.checkout.Checkout(c.Request.Context(), req.ToInput(customerID), key)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// @Summary Get booking
// @Description Get a booking; customers can only read their own
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromBookingView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List own bookings
// @Description Newest first, keyset pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {array} resdto.BookingListItemResponse
// @Failure 400 {object} map[string]string
// @Router /api/bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	cursor, limit := pageParams(c)
	items, next, err := h.q.ListByCustomer(c.Request.Context(), customerID, cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("bookings", resdto.FromBookingList(items), next))
}

// @Summary Cancel booking
// @Description Customers may cancel their own pending, confirmed or in-progress bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	b, err := h.cmds.TransitionStatus(c.Request.Context(), actor, id, booking.StatusCancelled.String())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}

func respondCreated(c *gin.Context, result *commands.CreateBookingResult) {
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.Header("Location", "/api/bookings/"+result.Booking.ID().String())
	c.JSON(status, resdto.FromCreateBookingResult(result))
}

// idempotencyKey returns nil when the header is absent.
func idempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(idempotencyHeader)
	if raw == "" {
		return nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, errInvalidIdempotencyKey
	}
	return &key, nil
}
