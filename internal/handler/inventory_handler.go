package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
	"github.com/noah-isme/sma-health-api/pkg/response"
)

type supplyService interface {
	RecordUsage(ctx context.Context, req dto.RecordSupplyUsageRequest, nurseID string) (*dto.SupplyUsageResponse, error)
}

type alertService interface {
	Scan(ctx context.Context) (*dto.AlertScanResult, error)
	Current(ctx context.Context) ([]models.InventoryAlert, error)
}

// InventoryHandler exposes supply usage and stock alert endpoints.
type InventoryHandler struct {
	supplies supplyService
	alerts   alertService
	actors   actorResolver
}

// NewInventoryHandler builds a new handler.
func NewInventoryHandler(supplies supplyService, alerts alertService, actors actorResolver) *InventoryHandler {
	return &InventoryHandler{supplies: supplies, alerts: alerts, actors: actors}
}

// RecordUsage godoc
// @Summary Consume supplies for a medical event
// @Tags Inventory
// @Accept json
// @Produce json
// @Param payload body dto.RecordSupplyUsageRequest true "Usage payload"
// @Success 201 {object} response.Envelope
// @Router /supplies/usage [post]
func (h *InventoryHandler) RecordUsage(c *gin.Context) {
	var req dto.RecordSupplyUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid supply usage payload"))
		return
	}
	nurse, err := currentNurse(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.supplies.RecordUsage(c.Request.Context(), req, nurse.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Alerts godoc
// @Summary List current low-stock and expiring items
// @Tags Inventory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.alerts.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, map[string]interface{}{"count": len(alerts)})
}

// ScanAlerts godoc
// @Summary Run the inventory alert scan now
// @Tags Inventory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inventory/alerts/scan [post]
func (h *InventoryHandler) ScanAlerts(c *gin.Context) {
	result, err := h.alerts.Scan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
