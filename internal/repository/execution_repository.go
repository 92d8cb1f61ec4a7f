package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
)

const (
	vaccinationColumns = `id, plan_id, student_id, nurse_id, vaccine_name, batch_number, dose_number, vaccination_date, reaction, notes, follow_up_required`
	checkupColumns     = `id, plan_id, student_id, nurse_id, checkup_type, checkup_date, result, abnormal_findings, recommendations, follow_up_required`
)

// ExecutionRepository persists per-student vaccination and checkup records.
type ExecutionRepository struct {
	db *sqlx.DB
}

// NewExecutionRepository constructs the repository.
func NewExecutionRepository(db *sqlx.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// CreateVaccinationIfAbsent inserts the record unless one exists for (plan, student).
// The boolean reports whether a row was inserted.
func (r *ExecutionRepository) CreateVaccinationIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.Vaccination) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	const query = `INSERT INTO vaccinations (` + vaccinationColumns + `)
VALUES (:id, :plan_id, :student_id, :nurse_id, :vaccine_name, :batch_number, :dose_number, :vaccination_date, :reaction, :notes, :follow_up_required)
ON CONFLICT (plan_id, student_id) DO NOTHING`
	return insertIfAbsent(ctx, pick(r.db, exec), query, record, "vaccination")
}

// CreateCheckupIfAbsent inserts the record unless one exists for (plan, student).
func (r *ExecutionRepository) CreateCheckupIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.HealthCheckup) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	const query = `INSERT INTO health_checkups (` + checkupColumns + `)
VALUES (:id, :plan_id, :student_id, :nurse_id, :checkup_type, :checkup_date, :result, :abnormal_findings, :recommendations, :follow_up_required)
ON CONFLICT (plan_id, student_id) DO NOTHING`
	return insertIfAbsent(ctx, pick(r.db, exec), query, record, "health checkup")
}

func insertIfAbsent(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}, label string) (bool, error) {
	result, err := sqlx.NamedExecContext(ctx, exec, query, arg)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", label, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", label, err)
	}
	return rows > 0, nil
}

// FindVaccinationByID loads a vaccination record.
func (r *ExecutionRepository) FindVaccinationByID(ctx context.Context, id string) (*models.Vaccination, error) {
	const query = `SELECT ` + vaccinationColumns + ` FROM vaccinations WHERE id = $1`
	var record models.Vaccination
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find vaccination: %w", err)
	}
	return &record, nil
}

// FindCheckupByID loads a checkup record.
func (r *ExecutionRepository) FindCheckupByID(ctx context.Context, id string) (*models.HealthCheckup, error) {
	const query = `SELECT ` + checkupColumns + ` FROM health_checkups WHERE id = $1`
	var record models.HealthCheckup
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find health checkup: %w", err)
	}
	return &record, nil
}

// UpdateVaccination writes the outcome columns of a vaccination record.
func (r *ExecutionRepository) UpdateVaccination(ctx context.Context, record *models.Vaccination) error {
	const query = `UPDATE vaccinations SET vaccine_name = :vaccine_name, batch_number = :batch_number, dose_number = :dose_number,
vaccination_date = :vaccination_date, reaction = :reaction, notes = :notes, follow_up_required = :follow_up_required
WHERE id = :id`
	return updateOne(ctx, r.db, query, record, "vaccination")
}

// UpdateCheckup writes the outcome columns of a checkup record.
func (r *ExecutionRepository) UpdateCheckup(ctx context.Context, record *models.HealthCheckup) error {
	const query = `UPDATE health_checkups SET checkup_type = :checkup_type, checkup_date = :checkup_date, result = :result,
abnormal_findings = :abnormal_findings, recommendations = :recommendations, follow_up_required = :follow_up_required
WHERE id = :id`
	return updateOne(ctx, r.db, query, record, "health checkup")
}

func updateOne(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}, label string) error {
	result, err := sqlx.NamedExecContext(ctx, exec, query, arg)
	if isMissing(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", label, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", label, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteVaccinationsByPlan removes every vaccination record of a plan.
func (r *ExecutionRepository) DeleteVaccinationsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error) {
	return deleteByPlan(ctx, pick(r.db, exec), `DELETE FROM vaccinations WHERE plan_id = $1`, planID, "vaccinations")
}

// DeleteCheckupsByPlan removes every checkup record of a plan.
func (r *ExecutionRepository) DeleteCheckupsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error) {
	return deleteByPlan(ctx, pick(r.db, exec), `DELETE FROM health_checkups WHERE plan_id = $1`, planID, "health checkups")
}

func deleteByPlan(ctx context.Context, exec sqlx.ExtContext, query, planID, label string) (int64, error) {
	result, err := exec.ExecContext(ctx, query, planID)
	if err != nil {
		return 0, fmt.Errorf("delete plan %s: %w", label, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", label, err)
	}
	return rows, nil
}
