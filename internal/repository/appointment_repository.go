package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
)

// AppointmentRepository persists consultations.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts an appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusPending
	}
	if appointment.CreatedDate.IsZero() {
		appointment.CreatedDate = time.Now().UTC()
	}
	const query = `INSERT INTO appointments (id, student_id, parent_id, nurse_id, scheduled_date, reason, status, created_date)
VALUES (:id, :student_id, :parent_id, :nurse_id, :scheduled_date, :reason, :status, :created_date)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}
