package models

import "time"

// AppointmentStatus tracks consultation scheduling.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a consultation between nurse, student and parent.
type Appointment struct {
	ID            string            `db:"id" json:"id"`
	StudentID     string            `db:"student_id" json:"student_id"`
	ParentID      *string           `db:"parent_id" json:"parent_id,omitempty"`
	NurseID       string            `db:"nurse_id" json:"nurse_id"`
	ScheduledDate time.Time         `db:"scheduled_date" json:"scheduled_date"`
	Reason        string            `db:"reason" json:"reason"`
	Status        AppointmentStatus `db:"status" json:"status"`
	CreatedDate   time.Time         `db:"created_date" json:"created_date"`
}
