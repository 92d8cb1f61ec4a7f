package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-health-api/internal/models"
)

const studentColumns = `id, full_name, grade, parent_id, active, created_at`

// StudentRepository provides read access to students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ListByIDs returns the students found among ids, keyed by id.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	result := make(map[string]models.Student, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	const query = `SELECT ` + studentColumns + ` FROM students WHERE id = ANY($1)`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		if isMissing(err) {
			return result, nil
		}
		return nil, fmt.Errorf("list students by id: %w", err)
	}
	for _, student := range students {
		result[student.ID] = student
	}
	return result, nil
}

// ListByGradeWithParent returns the active students of grade that have a linked parent.
// Reading through exec keeps the selection inside the caller's transaction.
func (r *StudentRepository) ListByGradeWithParent(ctx context.Context, exec sqlx.ExtContext, grade string) ([]models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM students
WHERE grade = $1 AND active = TRUE AND parent_id IS NOT NULL
ORDER BY full_name`
	var students []models.Student
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &students, query, grade); err != nil {
		return nil, fmt.Errorf("list students by grade: %w", err)
	}
	return students, nil
}
