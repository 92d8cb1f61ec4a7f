package models

import "time"

// PlanType distinguishes vaccination from health-checkup campaigns.
type PlanType string

const (
	PlanTypeVaccination   PlanType = "VACCINATION"
	PlanTypeHealthCheckup PlanType = "HEALTH_CHECKUP"
)

// Valid reports whether the plan type is supported.
func (t PlanType) Valid() bool {
	return t == PlanTypeVaccination || t == PlanTypeHealthCheckup
}

// PlanStatus tracks the lifecycle of a medical plan.
type PlanStatus string

const (
	PlanStatusPlanned    PlanStatus = "PLANNED"
	PlanStatusInProgress PlanStatus = "IN_PROGRESS"
	PlanStatusCompleted  PlanStatus = "COMPLETED"
)

// MedicalPlan is a vaccination or checkup campaign targeting one grade.
type MedicalPlan struct {
	ID          string     `db:"id" json:"id"`
	PlanType    PlanType   `db:"plan_type" json:"plan_type"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     time.Time  `db:"end_date" json:"end_date"`
	TargetGrade string     `db:"target_grade" json:"target_grade"`
	Status      PlanStatus `db:"status" json:"status"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
