// README: Request validation tests for booking and webhook handlers.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fleet/internal/http/handlers"
	"fleet/internal/modules/booking"
	"fleet/internal/modules/refund"
)

// buildTestRouter wires a minimal Gin engine with the booking and webhook
// handlers. The services are constructed over nil stores, which is safe here
// because every request below fails validation before any store call.
func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	bookingSvc := booking.NewService(nil)
	refundSvc := refund.NewService(nil, nil)
	r := gin.New()
	bh := handlers.NewBookingHandler(bookingSvc)
	wh := handlers.NewWebhookHandler(refundSvc)
	r.POST("/api/bookings", bh.Create)
	r.GET("/api/bookings", bh.List)
	r.POST("/api/webhooks/refund", wh.RefundEvent)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestCreate_InvalidJSON verifies that malformed bodies are rejected.
func TestCreate_InvalidJSON(t *testing.T) {
	r := buildTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestCreate_MissingFields verifies that a booking request without a user or
// vehicle is rejected before hitting the service.
func TestCreate_MissingFields(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/bookings", map[string]any{
		"kind":       "normal",
		"start_time": "2026-03-01T12:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestCreate_BadStartTime verifies that a non-RFC3339 start time is rejected.
func TestCreate_BadStartTime(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/bookings", map[string]any{
		"user_id":              "u1",
		"kind":                 "normal",
		"requested_vehicle_id": "v1",
		"start_time":           "tomorrow at noon",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestList_RequiresUserID verifies that the listing endpoint demands a user filter.
func TestList_RequiresUserID(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodGet, "/api/bookings", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestRefundEvent_UnknownEvent verifies that unrecognized provider events are rejected.
func TestRefundEvent_UnknownEvent(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/webhooks/refund", map[string]any{
		"booking_id": "b1",
		"event":      "exploded",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestRefundEvent_MissingBookingID verifies the booking id is mandatory.
func TestRefundEvent_MissingBookingID(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/api/webhooks/refund", map[string]any{
		"event": "initiated",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
