package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
)

const medicalEventColumns = `id, student_id, nurse_id, event_type, description, treatment, severity, event_date, active`

// MedicalEventRepository persists nurse-handled incidents.
type MedicalEventRepository struct {
	db *sqlx.DB
}

// NewMedicalEventRepository constructs the repository.
func NewMedicalEventRepository(db *sqlx.DB) *MedicalEventRepository {
	return &MedicalEventRepository{db: db}
}

// Create inserts an event.
func (r *MedicalEventRepository) Create(ctx context.Context, event *models.MedicalEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.EventDate.IsZero() {
		event.EventDate = time.Now().UTC()
	}
	const query = `INSERT INTO medical_events (` + medicalEventColumns + `)
VALUES (:id, :student_id, :nurse_id, :event_type, :description, :treatment, :severity, :event_date, :active)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create medical event: %w", err)
	}
	return nil
}

// FindByID loads an event by identifier.
func (r *MedicalEventRepository) FindByID(ctx context.Context, id string) (*models.MedicalEvent, error) {
	const query = `SELECT ` + medicalEventColumns + ` FROM medical_events WHERE id = $1`
	var event models.MedicalEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find medical event: %w", err)
	}
	return &event, nil
}
