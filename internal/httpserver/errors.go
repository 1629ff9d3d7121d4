package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine/internal/backend"
	"vitrine/internal/domain"
	"vitrine/internal/service/draft"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

// respondError maps service errors onto HTTP responses. Unexpected errors are
// logged and hidden behind a generic 500.
func (h *handlers) respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorBody{
			Code:    "invalid_input",
			Message: vErr.Message,
			Field:   vErr.Field,
		}})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, "unauthorized", "sign in again")
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", "resource not found")
		return
	case errors.Is(err, domain.ErrUnavailable):
		writeError(c, http.StatusConflict, "unavailable", "product is not available right now")
		return
	case errors.Is(err, draft.ErrInvalidState), errors.Is(err, draft.ErrWrongProduct):
		writeError(c, http.StatusConflict, "invalid_state", err.Error())
		return
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(c, http.StatusConflict, "conflict", "resource already exists")
		return
	}

	var stErr *backend.StatusError
	if errors.As(err, &stErr) {
		h.log.Warn(h.log.WithField(c.Request.Context(), "upstream_status", stErr.Status), "backend.rejected")
		writeError(c, http.StatusBadGateway, "upstream_error", "backend request failed")
		return
	}

	h.log.Error(c.Request.Context(), "request.failed", err)
	writeError(c, http.StatusInternalServerError, "internal", "internal error")
}

func bindError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "invalid_body", err.Error())
}
