package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type planReader interface {
	FindByID(ctx context.Context, id string) (*models.MedicalPlan, error)
}

type assignmentConsentReader interface {
	ListByPlanAndStudents(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType, studentIDs []string) (map[string]models.Consent, error)
}

type studentBatchReader interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]models.Student, error)
}

type executionWriter interface {
	CreateVaccinationIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.Vaccination) (bool, error)
	CreateCheckupIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.HealthCheckup) (bool, error)
}

// AssignmentService binds a nurse to consented students of a plan.
type AssignmentService struct {
	tx         txRunner
	plans      planReader
	nurses     nurseReader
	consents   assignmentConsentReader
	students   studentBatchReader
	executions executionWriter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAssignmentService constructs the coordinator.
func NewAssignmentService(
	tx txRunner,
	plans planReader,
	nurses nurseReader,
	consents assignmentConsentReader,
	students studentBatchReader,
	executions executionWriter,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tx:         tx,
		plans:      plans,
		nurses:     nurses,
		consents:   consents,
		students:   students,
		executions: executions,
		validator:  validate,
		logger:     logger,
	}
}

// Assign creates unperformed execution records for every requested student.
// The consent check and the inserts share one transaction, and it is all-or-nothing:
// one student without an APPROVED consent rejects the whole batch.
// Students that already have a record for the plan are reported as skipped.
func (s *AssignmentService) Assign(ctx context.Context, planID string, req dto.AssignNurseRequest) (*dto.AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	studentIDs := uniqueStrings(req.StudentIDs)

	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical plan not found")
		}
		return nil, appErrors.Internal(err, "failed to load medical plan")
	}
	nurse, err := s.nurses.FindByID(ctx, req.NurseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nurse not found")
		}
		return nil, appErrors.Internal(err, "failed to load nurse")
	}
	if !nurse.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "nurse is inactive")
	}

	result := &dto.AssignmentResult{PlanID: plan.ID, NurseID: nurse.ID, Created: []string{}, Skipped: []string{}}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		consents, err := s.consents.ListByPlanAndStudents(ctx, exec, plan.ID, plan.PlanType, studentIDs)
		if err != nil {
			return appErrors.Internal(err, "failed to load consents")
		}
		var invalid []string
		for _, id := range studentIDs {
			consent, ok := consents[id]
			if !ok || consent.Status != models.ConsentStatusApproved {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			return appErrors.Clone(appErrors.ErrInvalidOperation,
				"students without approved consent: "+s.describeStudents(ctx, invalid))
		}

		for _, id := range studentIDs {
			created, err := s.createRecord(ctx, exec, plan, nurse.ID, id)
			if err != nil {
				return err
			}
			if created {
				result.Created = append(result.Created, id)
			} else {
				result.Skipped = append(result.Skipped, id)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Internal(err, "failed to assign nurse")
	}

	s.logger.Info("nurse assigned",
		zap.String("plan_id", plan.ID),
		zap.String("nurse_id", nurse.ID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *AssignmentService) createRecord(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan, nurseID, studentID string) (bool, error) {
	switch plan.PlanType {
	case models.PlanTypeVaccination:
		return s.executions.CreateVaccinationIfAbsent(ctx, exec, &models.Vaccination{
			PlanID:          plan.ID,
			StudentID:       studentID,
			NurseID:         nurseID,
			VaccineName:     plan.Name,
			DoseNumber:      1,
			VaccinationDate: models.UnperformedDate,
		})
	case models.PlanTypeHealthCheckup:
		return s.executions.CreateCheckupIfAbsent(ctx, exec, &models.HealthCheckup{
			PlanID:      plan.ID,
			StudentID:   studentID,
			NurseID:     nurseID,
			CheckupType: plan.Name,
			CheckupDate: models.UnperformedDate,
		})
	default:
		return false, fmt.Errorf("unsupported plan type %q", plan.PlanType)
	}
}

// describeStudents renders "id (name)" for each student; names are best-effort.
func (s *AssignmentService) describeStudents(ctx context.Context, ids []string) string {
	students, err := s.students.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load student names", zap.Error(err))
		students = nil
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if student, ok := students[id]; ok {
			parts = append(parts, fmt.Sprintf("%s (%s)", id, student.FullName))
			continue
		}
		parts = append(parts, id)
	}
	return strings.Join(parts, ", ")
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
