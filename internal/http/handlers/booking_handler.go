// README: Booking handlers for create/get/list/cancel.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/modules/booking"
	"fleet/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type createBookingReq struct {
	UserID             string `json:"user_id"`
	Kind               string `json:"kind"`
	RequestedVehicleID string `json:"requested_vehicle_id"`
	StartTime          string `json:"start_time"`
	DurationMinutes    int    `json:"duration_minutes"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.RequestedVehicleID == "" || req.Kind == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	// The absolute instant is derived exactly once, here at intake.
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "start_time must be RFC3339")
		return
	}
	id, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		UserID:             types.ID(req.UserID),
		Kind:               booking.Kind(req.Kind),
		RequestedVehicleID: types.ID(req.RequestedVehicleID),
		StartTime:          start,
		DurationMinutes:    req.DurationMinutes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"booking_id": id, "status": booking.StatusUpcoming})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing booking id")
		return
	}
	b, err := h.booking.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookingView(b))
}

func (h *BookingHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "missing user_id")
		return
	}
	bs, err := h.booking.ListByUser(c.Request.Context(), types.ID(userID))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(bs))
	for i := range bs {
		out = append(out, bookingView(&bs[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing booking id")
		return
	}
	if err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{BookingID: types.ID(id)}); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": id, "status": booking.StatusCancelled})
}

func bookingView(b *booking.Booking) gin.H {
	v := gin.H{
		"booking_id":                 b.ID,
		"kind":                       b.Kind,
		"user_id":                    b.UserID,
		"requested_vehicle_id":       b.RequestedVehicleID,
		"effective_vehicle_id":       b.EffectiveVehicle(),
		"status":                     b.Status,
		"awaiting_manual_assignment": b.AwaitingManualAssignment,
		"refund_status":              b.RefundStatus,
		"duration_minutes":           b.DurationMinutes,
	}
	if b.AssignedVehicleID != nil {
		v["assigned_vehicle_id"] = *b.AssignedVehicleID
	}
	if b.StartTime != nil {
		v["start_time"] = b.StartTime.Format(time.RFC3339)
	}
	if b.ActivatedAt != nil {
		v["activated_at"] = b.ActivatedAt.Format(time.RFC3339)
	}
	if b.AssignedAt != nil {
		v["assigned_at"] = b.AssignedAt.Format(time.RFC3339)
	}
	return v
}
