package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
)

// ParentRepository provides read access to guardians.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs the repository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// FindByID returns a parent by domain id.
func (r *ParentRepository) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	return r.findOne(ctx, `SELECT id, user_id, full_name, phone FROM parents WHERE id = $1`, id)
}

// FindByUserID returns the parent linked to an account.
func (r *ParentRepository) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	return r.findOne(ctx, `SELECT id, user_id, full_name, phone FROM parents WHERE user_id = $1`, userID)
}

func (r *ParentRepository) findOne(ctx context.Context, query, arg string) (*models.Parent, error) {
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, arg); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}
	return &parent, nil
}
