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

type outcomeService interface {
	UpdateCheckup(ctx context.Context, id string, req dto.UpdateCheckupRequest, nurseID string) (*models.HealthCheckup, error)
	UpdateVaccination(ctx context.Context, id string, req dto.UpdateVaccinationRequest, nurseID string) (*models.Vaccination, error)
}

// OutcomeHandler lets nurses record checkup and vaccination results.
type OutcomeHandler struct {
	outcomes outcomeService
	actors   actorResolver
}

// NewOutcomeHandler builds a new handler.
func NewOutcomeHandler(outcomes outcomeService, actors actorResolver) *OutcomeHandler {
	return &OutcomeHandler{outcomes: outcomes, actors: actors}
}

// UpdateCheckup godoc
// @Summary Record a health checkup result
// @Tags Outcomes
// @Accept json
// @Produce json
// @Param id path string true "Health checkup ID"
// @Param payload body dto.UpdateCheckupRequest true "Result"
// @Success 200 {object} response.Envelope
// @Router /health-checkups/{id} [put]
func (h *OutcomeHandler) UpdateCheckup(c *gin.Context) {
	var req dto.UpdateCheckupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checkup payload"))
		return
	}
	nurse, err := currentNurse(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.outcomes.UpdateCheckup(c.Request.Context(), c.Param("id"), req, nurse.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// UpdateVaccination godoc
// @Summary Record a vaccination result
// @Tags Outcomes
// @Accept json
// @Produce json
// @Param id path string true "Vaccination ID"
// @Param payload body dto.UpdateVaccinationRequest true "Result"
// @Success 200 {object} response.Envelope
// @Router /vaccinations/{id} [put]
func (h *OutcomeHandler) UpdateVaccination(c *gin.Context) {
	var req dto.UpdateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vaccination payload"))
		return
	}
	nurse, err := currentNurse(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.outcomes.UpdateVaccination(c.Request.Context(), c.Param("id"), req, nurse.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}
