package api

import (
	"net/http"
	"strconv"

	"spa-storefront/internal/handler/httperr"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var (
	errUnauthorized          = errs.New("unauthenticated request")
	errInvalidIdempotencyKey = errs.Mark(errs.New("Idempotency-Key header must be a uuid"), errs.ErrInvalidInput)
)

// respondError maps the error taxonomy to a status. Promotion failures are
// checked first because an exhausted promotion is also marked as a conflict.
func respondError(c *gin.Context, err error) {
	if reason := commands.PromotionFailureReason(err); reason != "" {
		status := http.StatusUnprocessableEntity
		if reason == "not_found" {
			status = http.StatusNotFound
		}
		httperr.AbortWithError(c, status, err, "Promotion cannot be used", gin.H{"reason": reason})
		return
	}

	switch {
	case errs.Is(err, errs.ErrNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errs.Is(err, errs.ErrInvalidQuantity),
		errs.Is(err, errs.ErrInvalidInput),
		errs.Is(err, errs.ErrEmptyOrder):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", gin.H{"reason": err.Error()})
	case errs.Is(err, errs.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
	case errs.Is(err, errs.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Invalid transition", gin.H{"reason": err.Error()})
	case errs.Is(err, errs.ErrConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Conflict", gin.H{"reason": err.Error()})
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
	}
}

func abortBadRequest(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
}

func abortUnauthorized(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
}

// pageParams reads limit and after. An unparsable limit falls back to the default.
func pageParams(c *gin.Context) (*queries.Cursor, int) {
	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}
	return cursor, limit
}

func listResponse(key string, items any, next *queries.Cursor) gin.H {
	resp := gin.H{key: items}
	if next != nil {
		resp["next_cursor"] = next.After
	}
	return resp
}
