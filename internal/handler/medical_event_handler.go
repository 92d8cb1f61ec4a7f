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

type medicalEventService interface {
	Create(ctx context.Context, req dto.CreateMedicalEventRequest, nurseID string) (*models.MedicalEvent, error)
}

// MedicalEventHandler records incidents handled by nurses.
type MedicalEventHandler struct {
	events medicalEventService
	actors actorResolver
}

// NewMedicalEventHandler builds a new handler.
func NewMedicalEventHandler(events medicalEventService, actors actorResolver) *MedicalEventHandler {
	return &MedicalEventHandler{events: events, actors: actors}
}

// Create godoc
// @Summary Record a medical event
// @Tags Medical Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateMedicalEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /medical-events [post]
func (h *MedicalEventHandler) Create(c *gin.Context) {
	var req dto.CreateMedicalEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid medical event payload"))
		return
	}
	nurse, err := currentNurse(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.Create(c.Request.Context(), req, nurse.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}
