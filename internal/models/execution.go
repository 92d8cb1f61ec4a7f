package models

import "time"

// UnperformedDate marks an execution record assigned to a nurse but not yet carried out.
var UnperformedDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// IsUnperformed reports whether ts is the unperformed sentinel.
func IsUnperformed(ts time.Time) bool {
	return ts.Equal(UnperformedDate)
}

// Vaccination is the per-student execution record of a vaccination plan.
type Vaccination struct {
	ID               string    `db:"id" json:"id"`
	PlanID           string    `db:"plan_id" json:"plan_id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	NurseID          string    `db:"nurse_id" json:"nurse_id"`
	VaccineName      string    `db:"vaccine_name" json:"vaccine_name"`
	BatchNumber      string    `db:"batch_number" json:"batch_number"`
	DoseNumber       int       `db:"dose_number" json:"dose_number"`
	VaccinationDate  time.Time `db:"vaccination_date" json:"vaccination_date"`
	Reaction         string    `db:"reaction" json:"reaction"`
	Notes            string    `db:"notes" json:"notes"`
	FollowUpRequired bool      `db:"follow_up_required" json:"follow_up_required"`
}

// HealthCheckup is the per-student execution record of a checkup plan.
type HealthCheckup struct {
	ID               string    `db:"id" json:"id"`
	PlanID           string    `db:"plan_id" json:"plan_id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	NurseID          string    `db:"nurse_id" json:"nurse_id"`
	CheckupType      string    `db:"checkup_type" json:"checkup_type"`
	CheckupDate      time.Time `db:"checkup_date" json:"checkup_date"`
	Result           string    `db:"result" json:"result"`
	AbnormalFindings string    `db:"abnormal_findings" json:"abnormal_findings"`
	Recommendations  string    `db:"recommendations" json:"recommendations"`
	FollowUpRequired bool      `db:"follow_up_required" json:"follow_up_required"`
}
