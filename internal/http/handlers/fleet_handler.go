// README: Fleet handlers: register, list, availability view, activate/deactivate.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/modules/fleet"
	"fleet/internal/types"
)

type FleetHandler struct {
	fleet *fleet.Service
}

func NewFleetHandler(svc *fleet.Service) *FleetHandler {
	return &FleetHandler{fleet: svc}
}

type registerVehicleReq struct {
	Label string `json:"label"`
}

func (h *FleetHandler) Register(c *gin.Context) {
	var req registerVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Label == "" {
		writeError(c, http.StatusBadRequest, "missing label")
		return
	}
	id, err := h.fleet.Register(c.Request.Context(), fleet.RegisterCommand{Label: req.Label})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"vehicle_id": id})
}

func (h *FleetHandler) List(c *gin.Context) {
	vehicles, err := h.fleet.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, gin.H{"vehicle_id": v.ID, "label": v.Label, "is_active": v.IsActive})
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicles": out})
}

func (h *FleetHandler) Availability(c *gin.Context) {
	view, err := h.fleet.Availability(c.Request.Context(), time.Now())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(view))
	for _, va := range view {
		out = append(out, gin.H{
			"vehicle_id": va.Vehicle.ID,
			"label":      va.Vehicle.Label,
			"is_active":  va.Vehicle.IsActive,
			"state":      va.State,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"fleet": out})
}

func (h *FleetHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *FleetHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *FleetHandler) setActive(c *gin.Context, active bool) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing vehicle id")
		return
	}
	var err error
	if active {
		err = h.fleet.Activate(c.Request.Context(), types.ID(id))
	} else {
		err = h.fleet.Deactivate(c.Request.Context(), types.ID(id))
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicle_id": id, "is_active": active})
}
