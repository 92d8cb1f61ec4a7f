package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

const (
	followUpReason     = "Tư vấn sau khám sức khỏe"
	noReactionText     = "không có phản ứng"
	notificationLayout = "02/01/2006 15:04"
)

type outcomeRepository interface {
	FindVaccinationByID(ctx context.Context, id string) (*models.Vaccination, error)
	FindCheckupByID(ctx context.Context, id string) (*models.HealthCheckup, error)
	UpdateVaccination(ctx context.Context, record *models.Vaccination) error
	UpdateCheckup(ctx context.Context, record *models.HealthCheckup) error
}

type appointmentCreator interface {
	Create(ctx context.Context, appointment *models.Appointment) error
}

type parentNotifier interface {
	SendToParent(ctx context.Context, msg ParentMessage) error
}

// OutcomeService records nurse results and fires the parent-facing side effects.
type OutcomeService struct {
	records      outcomeRepository
	students     studentReader
	appointments appointmentCreator
	notifier     parentNotifier
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewOutcomeService constructs the recorder.
func NewOutcomeService(records outcomeRepository, students studentReader, appointments appointmentCreator, notifier parentNotifier, validate *validator.Validate, logger *zap.Logger) *OutcomeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutcomeService{
		records:      records,
		students:     students,
		appointments: appointments,
		notifier:     notifier,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// UpdateCheckup writes a checkup result. A required follow-up books a consultation for the next day
// and tells the parent about it; otherwise the parent receives the result summary.
func (s *OutcomeService) UpdateCheckup(ctx context.Context, id string, req dto.UpdateCheckupRequest, nurseID string) (*models.HealthCheckup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkup payload")
	}
	record, err := s.records.FindCheckupByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "health checkup not found")
		}
		return nil, appErrors.Internal(err, "failed to load health checkup")
	}

	if req.CheckupType != nil {
		record.CheckupType = *req.CheckupType
	}
	if req.Result != nil {
		record.Result = *req.Result
	}
	if req.AbnormalFindings != nil {
		record.AbnormalFindings = *req.AbnormalFindings
	}
	if req.Recommendations != nil {
		record.Recommendations = *req.Recommendations
	}
	if req.FollowUpRequired != nil {
		record.FollowUpRequired = *req.FollowUpRequired
	}
	now := s.now()
	record.CheckupDate = now.UTC()

	if err := s.records.UpdateCheckup(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "health checkup not found")
		}
		return nil, appErrors.Internal(err, "failed to update health checkup")
	}

	if record.FollowUpRequired {
		s.scheduleFollowUp(ctx, record, nurseID, now)
	} else {
		s.notify(ctx, ParentMessage{
			StudentID: record.StudentID,
			NurseID:   nurseID,
			Title:     "Kết quả khám sức khỏe",
			Content:   checkupSummary(record),
			Type:      models.NotificationTypeHealthCheckup,
		})
	}
	return record, nil
}

// UpdateVaccination writes a vaccination result. Only the assigned nurse may record it.
func (s *OutcomeService) UpdateVaccination(ctx context.Context, id string, req dto.UpdateVaccinationRequest, nurseID string) (*models.Vaccination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vaccination payload")
	}
	record, err := s.records.FindVaccinationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vaccination not found")
		}
		return nil, appErrors.Internal(err, "failed to load vaccination")
	}
	if record.NurseID != nurseID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vaccination not found")
	}

	if req.VaccineName != nil {
		record.VaccineName = *req.VaccineName
	}
	if req.BatchNumber != nil {
		record.BatchNumber = *req.BatchNumber
	}
	if req.DoseNumber != nil {
		record.DoseNumber = *req.DoseNumber
	}
	if req.Reaction != nil {
		record.Reaction = *req.Reaction
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.FollowUpRequired != nil {
		record.FollowUpRequired = *req.FollowUpRequired
	}
	record.VaccinationDate = s.now().UTC()

	if err := s.records.UpdateVaccination(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vaccination not found")
		}
		return nil, appErrors.Internal(err, "failed to update vaccination")
	}

	reaction := strings.TrimSpace(record.Reaction)
	if reaction == "" {
		reaction = noReactionText
	}
	s.notify(ctx, ParentMessage{
		StudentID: record.StudentID,
		NurseID:   nurseID,
		Title:     "Kết quả tiêm chủng",
		Content:   fmt.Sprintf("Học sinh đã được tiêm %s. Phản ứng sau tiêm: %s.", record.VaccineName, reaction),
		Type:      models.NotificationTypeVaccination,
	})
	return record, nil
}

func (s *OutcomeService) scheduleFollowUp(ctx context.Context, record *models.HealthCheckup, nurseID string, now time.Time) {
	scheduled := now.Add(24 * time.Hour)
	appointment := &models.Appointment{
		StudentID:     record.StudentID,
		NurseID:       nurseID,
		ScheduledDate: scheduled.UTC(),
		Reason:        followUpReason,
		Status:        models.AppointmentStatusPending,
	}
	if student, err := s.students.FindByID(ctx, record.StudentID); err != nil {
		s.logger.Warn("failed to resolve student for follow-up", zap.String("student_id", record.StudentID), zap.Error(err))
	} else {
		appointment.ParentID = student.ParentID
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		s.logger.Warn("failed to create follow-up appointment", zap.String("checkup_id", record.ID), zap.Error(err))
		return
	}
	s.notify(ctx, ParentMessage{
		StudentID: record.StudentID,
		NurseID:   nurseID,
		Title:     "Lịch tư vấn sau khám sức khỏe",
		Content:   fmt.Sprintf("Học sinh cần được tư vấn thêm sau khám sức khỏe. Lịch hẹn: %s.", scheduled.Format(notificationLayout)),
		Type:      models.NotificationTypeAppointment,
	})
}

func (s *OutcomeService) notify(ctx context.Context, msg ParentMessage) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendToParent(ctx, msg); err != nil {
		s.logger.Warn("failed to notify parent",
			zap.String("student_id", msg.StudentID),
			zap.String("type", string(msg.Type)),
			zap.Error(err),
		)
	}
}

func checkupSummary(record *models.HealthCheckup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s.", record.CheckupType, record.Result)
	if record.AbnormalFindings != "" {
		fmt.Fprintf(&b, " Dấu hiệu bất thường: %s.", record.AbnormalFindings)
	}
	if record.Recommendations != "" {
		fmt.Fprintf(&b, " Khuyến nghị: %s.", record.Recommendations)
	}
	return b.String()
}
