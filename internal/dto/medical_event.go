package dto

import "time"

// CreateMedicalEventRequest records an incident handled by a nurse.
type CreateMedicalEventRequest struct {
	StudentID      string     `json:"student_id" validate:"required"`
	EventType      string     `json:"event_type" validate:"required,max=100"`
	Description    string     `json:"description" validate:"required"`
	Treatment      string     `json:"treatment"`
	Severity       string     `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	EventDate      *time.Time `json:"event_date"`
	NotifyParent   bool       `json:"notify_parent"`
	CreateFollowUp bool       `json:"create_follow_up"`
}
