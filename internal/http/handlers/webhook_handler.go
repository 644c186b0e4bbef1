// README: Payment-provider refund notifications (already verified upstream).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/modules/refund"
	"fleet/internal/types"
)

type WebhookHandler struct {
	refund *refund.Service
}

func NewWebhookHandler(svc *refund.Service) *WebhookHandler {
	return &WebhookHandler{refund: svc}
}

type refundEventReq struct {
	BookingID string `json:"booking_id"`
	Event     string `json:"event"` // initiated | completed
}

func (h *WebhookHandler) RefundEvent(c *gin.Context) {
	var req refundEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.BookingID == "" {
		writeError(c, http.StatusBadRequest, "missing booking_id")
		return
	}

	var err error
	switch req.Event {
	case "initiated":
		err = h.refund.MarkInitiated(c.Request.Context(), types.ID(req.BookingID))
	case "completed":
		err = h.refund.MarkProcessed(c.Request.Context(), types.ID(req.BookingID))
	default:
		writeError(c, http.StatusBadRequest, "unknown event")
		return
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": req.BookingID, "event": req.Event})
}
