package models

import "time"

// ConsentStatus captures the parent's decision.
type ConsentStatus string

const (
	ConsentStatusPending  ConsentStatus = "PENDING"
	ConsentStatusApproved ConsentStatus = "APPROVED"
	ConsentStatusRejected ConsentStatus = "REJECTED"
)

// IsDecision reports whether the status is a terminal parent decision.
func (s ConsentStatus) IsDecision() bool {
	return s == ConsentStatusApproved || s == ConsentStatusRejected
}

// Consent is a parent's decision for one student in one plan.
// At most one row exists per (student, plan, type) and it leaves PENDING exactly once.
type Consent struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	ParentID        string        `db:"parent_id" json:"parent_id"`
	ConsentType     PlanType      `db:"consent_type" json:"consent_type"`
	ReferencePlanID string        `db:"reference_plan_id" json:"reference_plan_id"`
	Status          ConsentStatus `db:"status" json:"status"`
	RequestedDate   time.Time     `db:"requested_date" json:"requested_date"`
	ResponseDate    *time.Time    `db:"response_date" json:"response_date,omitempty"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
}

// ConsentDetail enriches a consent with display data for parents.
type ConsentDetail struct {
	Consent
	StudentName string `db:"student_name" json:"student_name"`
	PlanName    string `db:"plan_name" json:"plan_name"`
}
