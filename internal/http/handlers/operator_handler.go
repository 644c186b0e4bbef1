// README: Operator console handlers: manual assignment, completion, refund decisions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/modules/allocation"
	"fleet/internal/modules/booking"
	"fleet/internal/modules/refund"
	"fleet/internal/types"
)

type OperatorHandler struct {
	booking    *booking.Service
	allocation *allocation.Service
	refund     *refund.Service
}

func NewOperatorHandler(bookingSvc *booking.Service, allocationSvc *allocation.Service, refundSvc *refund.Service) *OperatorHandler {
	return &OperatorHandler{booking: bookingSvc, allocation: allocationSvc, refund: refundSvc}
}

type assignReq struct {
	VehicleID string `json:"vehicle_id"`
}

func (h *OperatorHandler) Assign(c *gin.Context) {
	id := c.Param("id")
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if id == "" || req.VehicleID == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	b, err := h.allocation.Assign(c.Request.Context(), allocation.AssignCommand{
		BookingID: types.ID(id),
		VehicleID: types.ID(req.VehicleID),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookingView(b))
}

func (h *OperatorHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing booking id")
		return
	}
	if err := h.booking.Complete(c.Request.Context(), booking.CompleteCommand{BookingID: types.ID(id)}); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": id, "status": booking.StatusCompleted})
}

func (h *OperatorHandler) ListAwaiting(c *gin.Context) {
	bs, err := h.booking.ListAwaitingManual(c.Request.Context())
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

func (h *OperatorHandler) ApproveRefund(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing booking id")
		return
	}
	if err := h.refund.Approve(c.Request.Context(), types.ID(id)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": id, "refund_status": booking.RefundPending})
}

func (h *OperatorHandler) RejectRefund(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing booking id")
		return
	}
	if err := h.refund.Reject(c.Request.Context(), types.ID(id)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": id, "refund_status": booking.RefundRejected})
}
