// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/modules/booking"
	"fleet/internal/modules/fleet"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps engine errors onto HTTP status codes. Conflict
// covers both invalid transitions and lost compare-and-set races; the
// caller retries or picks another vehicle.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest), errors.Is(err, fleet.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, fleet.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrConflict),
		errors.Is(err, booking.ErrVehicleUnavailable),
		errors.Is(err, fleet.ErrVehicleInactive),
		errors.Is(err, fleet.ErrVehicleInUse):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
