package api

import (
	"net/http"

	reqdto "spa-storefront/internal/handler/dto/request"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	cmds commands.PromotionCommands
	q    queries.PromotionQueries
}

func NewPromotionHandler(cmds commands.PromotionCommands, q queries.PromotionQueries) *PromotionHandler {
	return &PromotionHandler{cmds: cmds, q: q}
}

// @Summary Validate promotion
// @Description Preview the discount a code gives an order without consuming a use
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ValidatePromotionRequest true "Order to validate against"
// @Success 200 {object} resdto.PromotionQuoteResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/promotions/validate [post]
func (h *PromotionHandler) Validate(c *gin.Context) {
	var req reqdto.ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	quote, err := h.cmds.Validate(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPromotionQuote(quote))
}

// @Summary Apply promotion
// @Description Consume one use of a promotion code
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param code path string true "Promotion code"
// @Success 200 {object} resdto.ApplyPromotionResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/promotions/{code}/apply [post]
func (h *PromotionHandler) Apply(c *gin.Context) {
	result, err := h.cmds.Apply(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromApplyResult(result))
}

// @Summary List promotions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active promotions"
// @Success 200 {array} resdto.PromotionResponse
// @Router /api/admin/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromPromotionViews(views)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": resp})
}

// @Summary Create promotion
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreatePromotionRequest true "Promotion definition"
// @Success 201 {object} resdto.PromotionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/admin/promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var req reqdto.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	p, err := h.cmds.Create(c.Request.Context(), req.Code, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondView(c, http.StatusCreated, p.Code().String())
}

// @Summary Update promotion
// @Description Replace the definition of a promotion; the usage count is kept
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Promotion code"
// @Param request body reqdto.PromotionDefinitionRequest true "Promotion definition"
// @Success 200 {object} resdto.PromotionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/admin/promotions/{code} [put]
func (h *PromotionHandler) Update(c *gin.Context) {
	var req reqdto.PromotionDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	p, err := h.cmds.Update(c.Request.Context(), c.Param("code"), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondView(c, http.StatusOK, p.Code().String())
}

// @Summary Deactivate promotion
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param code path string true "Promotion code"
// @Success 200 {object} resdto.PromotionResponse
// @Failure 404 {object} map[string]string
// @Router /api/admin/promotions/{code}/deactivate [post]
func (h *PromotionHandler) Deactivate(c *gin.Context) {
	p, err := h.cmds.Deactivate(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondView(c, http.StatusOK, p.Code().String())
}

func (h *PromotionHandler) respondView(c *gin.Context, status int, code string) {
	view, err := h.q.GetByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromPromotionView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, resp)
}
