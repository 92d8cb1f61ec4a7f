package models

import "time"

// MedicalEvent is an incident handled by a nurse (injury, fever, ...).
type MedicalEvent struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	NurseID     string    `db:"nurse_id" json:"nurse_id"`
	EventType   string    `db:"event_type" json:"event_type"`
	Description string    `db:"description" json:"description"`
	Treatment   string    `db:"treatment" json:"treatment"`
	Severity    string    `db:"severity" json:"severity"`
	EventDate   time.Time `db:"event_date" json:"event_date"`
	Active      bool      `db:"active" json:"active"`
}
