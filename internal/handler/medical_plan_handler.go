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

type medicalPlanService interface {
	Create(ctx context.Context, req dto.CreateMedicalPlanRequest, createdBy string) (*dto.MedicalPlanResponse, error)
	Get(ctx context.Context, id string) (*models.MedicalPlan, error)
	Update(ctx context.Context, id string, req dto.UpdateMedicalPlanRequest) (*dto.MedicalPlanResponse, error)
	Delete(ctx context.Context, id string) error
}

type assignmentService interface {
	Assign(ctx context.Context, planID string, req dto.AssignNurseRequest) (*dto.AssignmentResult, error)
}

// MedicalPlanHandler exposes campaign management endpoints.
type MedicalPlanHandler struct {
	plans       medicalPlanService
	assignments assignmentService
}

// NewMedicalPlanHandler builds a new handler.
func NewMedicalPlanHandler(plans medicalPlanService, assignments assignmentService) *MedicalPlanHandler {
	return &MedicalPlanHandler{plans: plans, assignments: assignments}
}

// Create godoc
// @Summary Create a medical plan and request consent from parents of the target grade
// @Tags Medical Plans
// @Accept json
// @Produce json
// @Param payload body dto.CreateMedicalPlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /medical-plans [post]
func (h *MedicalPlanHandler) Create(c *gin.Context) {
	var req dto.CreateMedicalPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid medical plan payload"))
		return
	}
	createdBy := ""
	if claims := claimsFromContext(c); claims != nil {
		createdBy = claims.UserID
	}
	plan, err := h.plans.Create(c.Request.Context(), req, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Get godoc
// @Summary Get a medical plan
// @Tags Medical Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /medical-plans/{id} [get]
func (h *MedicalPlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Update godoc
// @Summary Update a medical plan
// @Description Changing the target grade discards existing consents and requests new ones.
// @Tags Medical Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.UpdateMedicalPlanRequest true "Plan changes"
// @Success 200 {object} response.Envelope
// @Router /medical-plans/{id} [put]
func (h *MedicalPlanHandler) Update(c *gin.Context) {
	var req dto.UpdateMedicalPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid medical plan payload"))
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Delete godoc
// @Summary Delete a medical plan with its consents and execution records
// @Tags Medical Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /medical-plans/{id} [delete]
func (h *MedicalPlanHandler) Delete(c *gin.Context) {
	if err := h.plans.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign godoc
// @Summary Assign a nurse to consented students
// @Tags Medical Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.AssignNurseRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /medical-plans/{id}/assignments [post]
func (h *MedicalPlanHandler) Assign(c *gin.Context) {
	var req dto.AssignNurseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
