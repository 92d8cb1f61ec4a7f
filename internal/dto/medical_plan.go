package dto

import (
	"time"

	"github.com/noah-isme/sma-health-api/internal/models"
)

// CreateMedicalPlanRequest payload for launching a campaign.
type CreateMedicalPlanRequest struct {
	PlanType    models.PlanType `json:"plan_type" validate:"required,oneof=VACCINATION HEALTH_CHECKUP"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"start_date" validate:"required"`
	EndDate     time.Time       `json:"end_date" validate:"required,gtefield=StartDate"`
	TargetGrade string          `json:"target_grade" validate:"required"`
}

// UpdateMedicalPlanRequest carries partial plan changes; nil fields are left untouched.
type UpdateMedicalPlanRequest struct {
	Name        *string            `json:"name" validate:"omitempty,max=200"`
	Description *string            `json:"description"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	TargetGrade *string            `json:"target_grade" validate:"omitempty,min=1"`
	Status      *models.PlanStatus `json:"status" validate:"omitempty,oneof=PLANNED IN_PROGRESS COMPLETED"`
}

// MedicalPlanResponse returns a plan with the number of consent requests generated.
type MedicalPlanResponse struct {
	models.MedicalPlan
	ConsentsCreated int `json:"consents_created"`
}

// AssignNurseRequest binds a nurse to consented students of a plan.
type AssignNurseRequest struct {
	NurseID    string   `json:"nurse_id" validate:"required"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// AssignmentResult summarises an assignment run.
type AssignmentResult struct {
	PlanID  string   `json:"plan_id"`
	NurseID string   `json:"nurse_id"`
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}
