package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

// errorResponse is the uniform error envelope. The code names the
// violated rule so clients can branch without parsing messages.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	ExcessMinutes int    `json:"excess_minutes,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// respondDomainError maps domain errors to HTTP statuses. Unrecognized
// errors become opaque 500s; their detail stays in the logs.
func respondDomainError(c *gin.Context, err error) {
	var (
		parseErr   *domain.ParseError
		rangeErr   *domain.InvalidRangeError
		capErr     *domain.CapacityExceededError
		overlapErr *domain.UnresolvableOverlapError
	)

	switch {
	case errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &parseErr):
		respondError(c, http.StatusBadRequest, "invalid_input", parseErr.Error())
	case errors.As(err, &rangeErr):
		respondError(c, http.StatusUnprocessableEntity, "invalid_range", rangeErr.Error())
	case errors.As(err, &capErr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:          "capacity_exceeded",
			Message:       capErr.Error(),
			ExcessMinutes: capErr.ExcessMinutes,
		}})
	case errors.As(err, &overlapErr):
		respondError(c, http.StatusUnprocessableEntity, "unresolvable_overlap", overlapErr.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
