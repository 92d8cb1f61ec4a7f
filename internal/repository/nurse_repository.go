package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
)

// NurseRepository provides read access to medical staff.
type NurseRepository struct {
	db *sqlx.DB
}

// NewNurseRepository constructs the repository.
func NewNurseRepository(db *sqlx.DB) *NurseRepository {
	return &NurseRepository{db: db}
}

// FindByID returns a nurse by domain id.
func (r *NurseRepository) FindByID(ctx context.Context, id string) (*models.Nurse, error) {
	return r.findOne(ctx, `SELECT id, user_id, full_name, active FROM nurses WHERE id = $1`, id)
}

// FindByUserID returns the nurse linked to an account.
func (r *NurseRepository) FindByUserID(ctx context.Context, userID string) (*models.Nurse, error) {
	return r.findOne(ctx, `SELECT id, user_id, full_name, active FROM nurses WHERE user_id = $1`, userID)
}

func (r *NurseRepository) findOne(ctx context.Context, query, arg string) (*models.Nurse, error) {
	var nurse models.Nurse
	if err := r.db.GetContext(ctx, &nurse, query, arg); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find nurse: %w", err)
	}
	return &nurse, nil
}
