package api

import (
	"net/http"

	reqdto "spa-storefront/internal/handler/dto/request"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cmds commands.CartCommands
}

func NewCartHandler(cmds commands.CartCommands) *CartHandler {
	return &CartHandler{cmds: cmds}
}

// @Summary Get cart
// @Description Get the caller's cart, creating an empty one on first use
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Router /api/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	ct, err := h.cmds.GetOrCreate(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCart(ct))
}

// @Summary Add cart item
// @Description Add a catalog item; an existing line for the item has its quantity increased
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddCartItemRequest true "Item to add"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	var req reqdto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	ct, err := h.cmds.AddItem(c.Request.Context(), customerID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCart(ct))
}

// @Summary Update cart line quantity
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lineId path string true "Cart line ID"
// @Param request body reqdto.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/cart/items/{lineId} [patch]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	var req reqdto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	ct, err := h.cmds.UpdateQuantity(c.Request.Context(), customerID, lineID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCart(ct))
}

// @Summary Remove cart line
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param lineId path string true "Cart line ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} map[string]string
// @Router /api/cart/items/{lineId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	ct, err := h.cmds.RemoveItem(c.Request.Context(), customerID, lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCart(ct))
}

// @Summary Clear cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Router /api/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	ct, err := h.cmds.Clear(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCart(ct))
}

// @Summary Merge guest cart
// @Description Fold a client-side guest cart into the caller's cart; unusable lines are reported as skipped
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.MergeCartRequest true "Guest cart lines"
// @Success 200 {object} resdto.MergeCartResponse
// @Failure 400 {object} map[string]string
// @Router /api/cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	var req reqdto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	result, err := h.cmds.MergeGuestCart(c.Request.Context(), customerID, req.ToGuestLines())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMergeResult(result))
}
