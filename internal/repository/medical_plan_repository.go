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

const planColumns = `id, plan_type, name, description, start_date, end_date, target_grade, status, created_by, created_at`

// MedicalPlanRepository persists vaccination and checkup campaigns.
type MedicalPlanRepository struct {
	db *sqlx.DB
}

// NewMedicalPlanRepository constructs the repository.
func NewMedicalPlanRepository(db *sqlx.DB) *MedicalPlanRepository {
	return &MedicalPlanRepository{db: db}
}

// Create inserts a plan row.
func (r *MedicalPlanRepository) Create(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusPlanned
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO medical_plans (` + planColumns + `)
VALUES (:id, :plan_type, :name, :description, :start_date, :end_date, :target_grade, :status, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, plan); err != nil {
		return fmt.Errorf("create medical plan: %w", err)
	}
	return nil
}

// FindByID loads a plan by identifier.
func (r *MedicalPlanRepository) FindByID(ctx context.Context, id string) (*models.MedicalPlan, error) {
	const query = `SELECT ` + planColumns + ` FROM medical_plans WHERE id = $1`
	var plan models.MedicalPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find medical plan: %w", err)
	}
	return &plan, nil
}

// Update overwrites the mutable plan columns.
func (r *MedicalPlanRepository) Update(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error {
	const query = `UPDATE medical_plans SET name = :name, description = :description, start_date = :start_date,
end_date = :end_date, target_grade = :target_grade, status = :status WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, plan)
	if isMissing(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("update medical plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("medical plan rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the plan row; dependents must be removed first.
func (r *MedicalPlanRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM medical_plans WHERE id = $1`, id)
	if isMissing(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("delete medical plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("medical plan rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
