package api

import (
	"net/http"

	reqdto "spa-storefront/internal/handler/dto/request"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminBookingHandler serves the back-office booking routes. The router
// restricts it to admins; the domain checks the role again.
type AdminBookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewAdminBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *AdminBookingHandler {
	return &AdminBookingHandler{cmds: cmds, q: q}
}

// @Summary List bookings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status filter"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {array} resdto.BookingListItemResponse
// @Failure 400 {object} map[string]string
// @Router /api/admin/bookings [get]
func (h *AdminBookingHandler) List(c *gin.Context) {
	cursor, limit := pageParams(c)
	items, next, err := h.q.ListAll(c.Request.Context(), c.Query("status"), cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("bookings", resdto.FromBookingList(items), next))
}

// @Summary Transition booking status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.TransitionStatusRequest true "Target status"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/admin/bookings/{id}/status [patch]
func (h *AdminBookingHandler) TransitionStatus(c *gin.Context) {
	var req reqdto.TransitionStatusRequest
	h.transition(c, &req, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		b, err := h.cmds.TransitionStatus(c.Request.Context(), actor, id, req.Status)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resdto.FromBooking(b))
		return nil
	})
}

// @Summary Transition payment status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.TransitionPaymentRequest true "Target payment status"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/admin/bookings/{id}/payment [patch]
func (h *AdminBookingHandler) TransitionPayment(c *gin.Context) {
	var req reqdto.TransitionPaymentRequest
	h.transition(c, &req, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		b, err := h.cmds.TransitionPayment(c.Request.Context(), actor, id, req.PaymentStatus)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resdto.FromBooking(b))
		return nil
	})
}

// @Summary Assign staff
// @Description Set or clear the assigned staff member and staff notes
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AssignStaffRequest true "Staff fields"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Router /api/admin/bookings/{id}/staff [patch]
func (h *AdminBookingHandler) AssignStaff(c *gin.Context) {
	var req reqdto.AssignStaffRequest
	h.transition(c, &req, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		b, err := h.cmds.AssignStaff(c.Request.Context(), actor, id, req.ToInput())
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resdto.FromBooking(b))
		return nil
	})
}

// transition parses the booking id and body, then runs fn and maps its error.
func (h *AdminBookingHandler) transition(c *gin.Context, req any, fn func(c *gin.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := fn(c, id); err != nil {
		respondError(c, err)
	}
}
