package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.MedicalNotification) error
	ListForParent(ctx context.Context, parentID string, unreadOnly bool, limit int) ([]models.MedicalNotification, error)
	MarkRead(ctx context.Context, parentID, id string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type parentReader interface {
	FindByID(ctx context.Context, id string) (*models.Parent, error)
}

type nurseReader interface {
	FindByID(ctx context.Context, id string) (*models.Nurse, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type notificationMailer interface {
	SendNotificationCopy(to, title, content string)
}

// ParentMessage is a notification about one student addressed to that student's parent.
type ParentMessage struct {
	StudentID string
	NurseID   string
	Title     string
	Content   string
	Type      models.NotificationType
}

// NotificationService persists in-app notifications and mirrors them by email.
type NotificationService struct {
	notifications notificationRepository
	students      studentReader
	parents       parentReader
	nurses        nurseReader
	users         userReader
	mail          notificationMailer
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewNotificationService constructs the dispatcher.
func NewNotificationService(
	notifications notificationRepository,
	students studentReader,
	parents parentReader,
	nurses nurseReader,
	users userReader,
	mail notificationMailer,
	metrics *MetricsService,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		students:      students,
		parents:       parents,
		nurses:        nurses,
		users:         users,
		mail:          mail,
		metrics:       metrics,
		logger:        logger,
	}
}

// SendToParent notifies the parent of msg.StudentID. Students without a linked parent are skipped silently.
func (s *NotificationService) SendToParent(ctx context.Context, msg ParentMessage) error {
	student, err := s.students.FindByID(ctx, msg.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Internal(err, "failed to load student")
	}
	if student.ParentID == nil || *student.ParentID == "" {
		return nil
	}

	var senderID *string
	if msg.NurseID != "" {
		nurse, err := s.nurses.FindByID(ctx, msg.NurseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "nurse not found")
			}
			return appErrors.Internal(err, "failed to load nurse")
		}
		senderID = &nurse.UserID
	}

	studentID := student.ID
	notification := &models.MedicalNotification{
		StudentID:     &studentID,
		Title:         msg.Title,
		Content:       msg.Content,
		Type:          msg.Type,
		RecipientType: models.RecipientParent,
		IsRead:        false,
		SenderID:      senderID,
		Priority:      models.PriorityNormal,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return appErrors.Internal(err, "failed to create notification")
	}
	s.metrics.RecordNotification(notification.Type, notification.RecipientType)

	s.mailParent(ctx, *student.ParentID, msg.Title, msg.Content)
	return nil
}

// SendToManagers records one manager-wide notification and emails every active manager.
func (s *NotificationService) SendToManagers(ctx context.Context, title, content string, kind models.NotificationType, priority models.NotificationPriority) error {
	notification := &models.MedicalNotification{
		Title:         title,
		Content:       content,
		Type:          kind,
		RecipientType: models.RecipientManager,
		Priority:      priority,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return appErrors.Internal(err, "failed to create manager notification")
	}
	s.metrics.RecordNotification(notification.Type, notification.RecipientType)

	if s.mail == nil || s.users == nil {
		return nil
	}
	managers, err := s.users.ListActiveByRole(ctx, models.RoleManager)
	if err != nil {
		s.logger.Warn("failed to list managers for email copy", zap.Error(err))
		return nil
	}
	for _, manager := range managers {
		s.mail.SendNotificationCopy(manager.Email, title, content)
	}
	return nil
}

// ListForParent returns the parent's inbox, newest first.
func (s *NotificationService) ListForParent(ctx context.Context, parentID string, unreadOnly bool, limit int) ([]models.MedicalNotification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	notifications, err := s.notifications.ListForParent(ctx, parentID, unreadOnly, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.MedicalNotification{}
	}
	return notifications, nil
}

// MarkRead flips the read flag of a notification owned by the parent.
func (s *NotificationService) MarkRead(ctx context.Context, parentID, id string) error {
	if err := s.notifications.MarkRead(ctx, parentID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Internal(err, "failed to update notification")
	}
	return nil
}

func (s *NotificationService) mailParent(ctx context.Context, parentID, title, content string) {
	if s.mail == nil || s.parents == nil || s.users == nil {
		return
	}
	parent, err := s.parents.FindByID(ctx, parentID)
	if err != nil {
		s.logger.Warn("failed to resolve parent for email copy", zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	user, err := s.users.FindByID(ctx, parent.UserID)
	if err != nil {
		s.logger.Warn("failed to resolve parent account for email copy", zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	s.mail.SendNotificationCopy(user.Email, title, content)
}
