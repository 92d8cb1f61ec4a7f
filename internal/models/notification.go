package models

import "time"

// NotificationType categorises medical notifications.
type NotificationType string

const (
	NotificationTypeVaccination    NotificationType = "VACCINATION"
	NotificationTypeHealthCheckup  NotificationType = "HEALTH_CHECKUP"
	NotificationTypeAppointment    NotificationType = "APPOINTMENT"
	NotificationTypeMedicalEvent   NotificationType = "MEDICAL_EVENT"
	NotificationTypeLowStock       NotificationType = "LOW_STOCK"
	NotificationTypeExpirySoon     NotificationType = "EXPIRY_SOON"
	NotificationTypeConsentRequest NotificationType = "CONSENT_REQUEST"
)

// RecipientType identifies the audience of a notification.
type RecipientType string

const (
	RecipientParent  RecipientType = "PARENT"
	RecipientManager RecipientType = "MANAGER"
)

// NotificationPriority orders notifications in inboxes.
type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
)

// MedicalNotification is an append-only in-app message; only IsRead changes.
type MedicalNotification struct {
	ID            string               `db:"id" json:"id"`
	StudentID     *string              `db:"student_id" json:"student_id,omitempty"`
	Title         string               `db:"title" json:"title"`
	Content       string               `db:"content" json:"content"`
	Type          NotificationType     `db:"type" json:"type"`
	RecipientType RecipientType        `db:"recipient_type" json:"recipient_type"`
	SentDate      time.Time            `db:"sent_date" json:"sent_date"`
	IsRead        bool                 `db:"is_read" json:"is_read"`
	SenderID      *string              `db:"sender_id" json:"sender_id,omitempty"`
	Priority      NotificationPriority `db:"priority" json:"priority"`
}
