// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleet/internal/http/handlers"
	"fleet/internal/http/middleware"
	"fleet/internal/modules/allocation"
	"fleet/internal/modules/booking"
	"fleet/internal/modules/fleet"
	"fleet/internal/modules/refund"
)

type RouterDeps struct {
	Booking    *booking.Service
	Allocation *allocation.Service
	Fleet      *fleet.Service
	Refund     *refund.Service
	Log        *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Log), middleware.Recovery(deps.Log))

	bookingHandler := handlers.NewBookingHandler(deps.Booking)
	r.POST("/api/bookings", bookingHandler.Create)
	r.GET("/api/bookings", bookingHandler.List)
	r.GET("/api/bookings/:id", bookingHandler.Get)
	r.POST("/api/bookings/:id/cancel", bookingHandler.Cancel)

	operatorHandler := handlers.NewOperatorHandler(deps.Booking, deps.Allocation, deps.Refund)
	r.POST("/api/operator/bookings/:id/assign", operatorHandler.Assign)
	r.POST("/api/operator/bookings/:id/complete", operatorHandler.Complete)
	r.GET("/api/operator/bookings/awaiting", operatorHandler.ListAwaiting)
	r.POST("/api/operator/refunds/:id/approve", operatorHandler.ApproveRefund)
	r.POST("/api/operator/refunds/:id/reject", operatorHandler.RejectRefund)

	fleetHandler := handlers.NewFleetHandler(deps.Fleet)
	r.POST("/api/fleet", fleetHandler.Register)
	r.GET("/api/fleet", fleetHandler.List)
	r.GET("/api/fleet/availability", fleetHandler.Availability)
	r.POST("/api/fleet/:id/activate", fleetHandler.Activate)
	r.POST("/api/fleet/:id/deactivate", fleetHandler.Deactivate)

	webhookHandler := handlers.NewWebhookHandler(deps.Refund)
	r.POST("/api/webhooks/refunds", webhookHandler.RefundEvent)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
