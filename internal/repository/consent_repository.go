package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-health-api/internal/models"
)

const consentColumns = `id, student_id, parent_id, consent_type, reference_plan_id, status, requested_date, response_date, notes`

// ConsentRepository persists parent consent decisions.
type ConsentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository constructs the repository.
func NewConsentRepository(db *sqlx.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// CreateBatch inserts pending consents, skipping any (student, plan, type) that already exists.
// It returns the consents actually inserted.
func (r *ConsentRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, consents []models.Consent) ([]models.Consent, error) {
	target := pick(r.db, exec)
	const query = `INSERT INTO consents (` + consentColumns + `)
VALUES (:id, :student_id, :parent_id, :consent_type, :reference_plan_id, :status, :requested_date, :response_date, :notes)
ON CONFLICT (student_id, reference_plan_id, consent_type) DO NOTHING`
	now := time.Now().UTC()
	created := make([]models.Consent, 0, len(consents))
	for i := range consents {
		consent := consents[i]
		if consent.ID == "" {
			consent.ID = uuid.NewString()
		}
		if consent.Status == "" {
			consent.Status = models.ConsentStatusPending
		}
		if consent.RequestedDate.IsZero() {
			consent.RequestedDate = now
		}
		result, err := sqlx.NamedExecContext(ctx, target, query, consent)
		if err != nil {
			return nil, fmt.Errorf("create consent for student %s: %w", consent.StudentID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("consent rows affected: %w", err)
		}
		if rows > 0 {
			created = append(created, consent)
		}
	}
	return created, nil
}

// DeleteByPlan removes every consent of a plan for the given type.
func (r *ConsentRepository) DeleteByPlan(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType) (int64, error) {
	const query = `DELETE FROM consents WHERE reference_plan_id = $1 AND consent_type = $2`
	result, err := pick(r.db, exec).ExecContext(ctx, query, planID, consentType)
	if err != nil {
		return 0, fmt.Errorf("delete plan consents: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("consent rows affected: %w", err)
	}
	return rows, nil
}

// FindByID loads a consent by identifier.
func (r *ConsentRepository) FindByID(ctx context.Context, id string) (*models.Consent, error) {
	const query = `SELECT ` + consentColumns + ` FROM consents WHERE id = $1`
	var consent models.Consent
	if err := r.db.GetContext(ctx, &consent, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find consent: %w", err)
	}
	return &consent, nil
}

// ListByPlanAndStudents returns the consents of the given students for a plan, keyed by student id.
// The rows are locked FOR SHARE so a concurrent grade change cannot remove them before exec commits.
func (r *ConsentRepository) ListByPlanAndStudents(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType, studentIDs []string) (map[string]models.Consent, error) {
	result := make(map[string]models.Consent, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	const query = `SELECT ` + consentColumns + ` FROM consents
WHERE reference_plan_id = $1 AND consent_type = $2 AND student_id = ANY($3)
FOR SHARE`
	var consents []models.Consent
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &consents, query, planID, consentType, pq.Array(studentIDs)); err != nil {
		if isMissing(err) {
			return result, nil
		}
		return nil, fmt.Errorf("list plan consents: %w", err)
	}
	for _, consent := range consents {
		result[consent.StudentID] = consent
	}
	return result, nil
}

// RespondParams groups the columns written by a parent decision.
type RespondParams struct {
	ID           string
	Status       models.ConsentStatus
	ResponseDate time.Time
	Notes        *string
}

// Respond applies a decision only while the consent is still pending.
// It returns sql.ErrNoRows when the consent is missing or already answered.
func (r *ConsentRepository) Respond(ctx context.Context, params RespondParams) error {
	query := fmt.Sprintf(`UPDATE consents SET status = $2, response_date = $3, notes = $4
WHERE id = $1 AND status = '%s'`, models.ConsentStatusPending)
	result, err := r.db.ExecContext(ctx, query, params.ID, params.Status, params.ResponseDate, params.Notes)
	if isMissing(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("respond consent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consent rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByParent returns a parent's consents in the given statuses.
// Pending consents are ordered by request date, answered ones by response date, newest first.
func (r *ConsentRepository) ListByParent(ctx context.Context, parentID string, statuses []models.ConsentStatus) ([]models.ConsentDetail, error) {
	raw := make([]string, len(statuses))
	answered := true
	for i, status := range statuses {
		raw[i] = string(status)
		if status == models.ConsentStatusPending {
			answered = false
		}
	}
	order := "c.requested_date DESC"
	if answered {
		order = "c.response_date DESC NULLS LAST"
	}
	query := `SELECT c.id, c.student_id, c.parent_id, c.consent_type, c.reference_plan_id, c.status,
       c.requested_date, c.response_date, c.notes, s.full_name AS student_name, p.name AS plan_name
FROM consents c
JOIN students s ON s.id = c.student_id
JOIN medical_plans p ON p.id = c.reference_plan_id
WHERE c.parent_id = $1 AND c.status = ANY($2)
ORDER BY ` + order
	var consents []models.ConsentDetail
	if err := r.db.SelectContext(ctx, &consents, query, parentID, pq.Array(raw)); err != nil {
		return nil, fmt.Errorf("list parent consents (%s): %w", strings.Join(raw, ","), err)
	}
	return consents, nil
}
