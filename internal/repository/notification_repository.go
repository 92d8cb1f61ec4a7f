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

const notificationColumns = `id, student_id, title, content, type, recipient_type, sent_date, is_read, sender_id, priority`

// NotificationRepository persists in-app medical notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.MedicalNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.SentDate.IsZero() {
		notification.SentDate = time.Now().UTC()
	}
	if notification.Priority == "" {
		notification.Priority = models.PriorityNormal
	}
	const query = `INSERT INTO medical_notifications (` + notificationColumns + `)
VALUES (:id, :student_id, :title, :content, :type, :recipient_type, :sent_date, :is_read, :sender_id, :priority)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForParent returns parent notifications about the parent's children, newest first.
func (r *NotificationRepository) ListForParent(ctx context.Context, parentID string, unreadOnly bool, limit int) ([]models.MedicalNotification, error) {
	query := `SELECT n.id, n.student_id, n.title, n.content, n.type, n.recipient_type, n.sent_date, n.is_read, n.sender_id, n.priority
FROM medical_notifications n
JOIN students s ON s.id = n.student_id
WHERE s.parent_id = $1 AND n.recipient_type = $2`
	if unreadOnly {
		query += ` AND n.is_read = FALSE`
	}
	query += ` ORDER BY n.sent_date DESC LIMIT $3`
	var notifications []models.MedicalNotification
	if err := r.db.SelectContext(ctx, &notifications, query, parentID, models.RecipientParent, limit); err != nil {
		return nil, fmt.Errorf("list parent notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips is_read for a notification addressed to the parent's child.
// sql.ErrNoRows means the notification does not exist or belongs to another family.
func (r *NotificationRepository) MarkRead(ctx context.Context, parentID, id string) error {
	const query = `UPDATE medical_notifications n SET is_read = TRUE
FROM students s
WHERE n.id = $1 AND s.id = n.student_id AND s.parent_id = $2 AND n.recipient_type = $3`
	result, err := r.db.ExecContext(ctx, query, id, parentID, models.RecipientParent)
	if isMissing(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
