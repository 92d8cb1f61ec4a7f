package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

const eventFollowUpReason = "Theo dõi sau sự cố y tế"

type medicalEventRepository interface {
	Create(ctx context.Context, event *models.MedicalEvent) error
}

// MedicalEventService records incidents handled by nurses.
type MedicalEventService struct {
	events       medicalEventRepository
	students     studentReader
	appointments appointmentCreator
	notifier     parentNotifier
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewMedicalEventService constructs the service.
func NewMedicalEventService(events medicalEventRepository, students studentReader, appointments appointmentCreator, notifier parentNotifier, validate *validator.Validate, logger *zap.Logger) *MedicalEventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicalEventService{
		events:       events,
		students:     students,
		appointments: appointments,
		notifier:     notifier,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores an event, then either notifies the parent or books a follow-up. The two are exclusive.
func (s *MedicalEventService) Create(ctx context.Context, req dto.CreateMedicalEventRequest, nurseID string) (*models.MedicalEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid medical event payload")
	}
	if req.NotifyParent && req.CreateFollowUp {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "notify_parent and create_follow_up cannot both be set")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	now := s.now()
	event := &models.MedicalEvent{
		StudentID:   student.ID,
		NurseID:     nurseID,
		EventType:   req.EventType,
		Description: req.Description,
		Treatment:   req.Treatment,
		Severity:    req.Severity,
		EventDate:   now.UTC(),
		Active:      true,
	}
	if event.Severity == "" {
		event.Severity = "LOW"
	}
	if req.EventDate != nil {
		event.EventDate = req.EventDate.UTC()
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to create medical event")
	}

	switch {
	case req.NotifyParent:
		if err := s.notifier.SendToParent(ctx, ParentMessage{
			StudentID: student.ID,
			NurseID:   nurseID,
			Title:     "Thông báo sự cố y tế",
			Content:   fmt.Sprintf("%s: %s. Xử lý: %s.", event.EventType, event.Description, event.Treatment),
			Type:      models.NotificationTypeMedicalEvent,
		}); err != nil {
			s.logger.Warn("failed to notify parent about medical event", zap.String("event_id", event.ID), zap.Error(err))
		}
	case req.CreateFollowUp:
		appointment := &models.Appointment{
			StudentID:     student.ID,
			ParentID:      student.ParentID,
			NurseID:       nurseID,
			ScheduledDate: now.Add(24 * time.Hour).UTC(),
			Reason:        eventFollowUpReason,
			Status:        models.AppointmentStatusPending,
		}
		if err := s.appointments.Create(ctx, appointment); err != nil {
			s.logger.Warn("failed to create follow-up for medical event", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	return event, nil
}
