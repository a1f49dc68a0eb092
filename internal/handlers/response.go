package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/apierr"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondMapped translates domain errors into their HTTP shape, falling
// back to 500 for anything unrecognized.
func RespondMapped(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	var se *types.SchemaError
	if errors.As(err, &se) {
		RespondError(c, http.StatusUnprocessableEntity, "schema_mismatch", se)
		return
	}
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrEmptyIdentifier):
		RespondError(c, http.StatusBadRequest, "empty_identifier", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
