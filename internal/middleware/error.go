package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	applog "github.com/pageza/foodgram/backend/internal/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	IDs   []uint `json:"ids,omitempty"`
}

// NewErrorResponse describes err for the client. Internal failures are
// reported without detail.
func NewErrorResponse(err error) ErrorResponse {
	if apperrors.IsInternal(err) {
		return ErrorResponse{Error: apperrors.ErrInternal.Error()}
	}
	resp := ErrorResponse{Error: err.Error()}
	var (
		required *apperrors.RequiredFieldError
		rng      *apperrors.RangeError
		format   *apperrors.FormatError
		ref      *apperrors.ReferenceError
		dup      *apperrors.DuplicateError
	)
	switch {
	case errors.As(err, &required):
		resp.Field = required.Field
	case errors.As(err, &rng):
		resp.Field = rng.Field
	case errors.As(err, &format):
		resp.Field = format.Field
	case errors.As(err, &ref):
		resp.Field, resp.IDs = ref.Field, ref.IDs
	case errors.As(err, &dup):
		resp.Field, resp.IDs = dup.Field, dup.IDs
	}
	return resp
}

// AbortWithError writes the JSON error for err and stops the chain.
// Internal failures are logged with their detail.
func AbortWithError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		applog.Error(c.Request.Context(), "request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(err))
}

// Recovery turns a panic in a handler into a logged JSON 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		AbortWithError(c, fmt.Errorf("panic: %v", recovered))
	})
}
