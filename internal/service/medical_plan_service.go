package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, exec sqlx.ExtContext) error) error
}

type medicalPlanRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error
	FindByID(ctx context.Context, id string) (*models.MedicalPlan, error)
	Update(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type planConsentRepository interface {
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, consents []models.Consent) ([]models.Consent, error)
	DeleteByPlan(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType) (int64, error)
}

type gradeStudentReader interface {
	ListByGradeWithParent(ctx context.Context, exec sqlx.ExtContext, grade string) ([]models.Student, error)
}

type planExecutionCleaner interface {
	DeleteVaccinationsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error)
	DeleteCheckupsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error)
}

type consentRequestMailer interface {
	SendConsentRequest(req ConsentEmail)
}

// MedicalPlanService manages campaigns and fans out their consent requests.
type MedicalPlanService struct {
	tx         txRunner
	plans      medicalPlanRepository
	consents   planConsentRepository
	students   gradeStudentReader
	executions planExecutionCleaner
	parents    parentReader
	users      userReader
	mail       consentRequestMailer
	validator  *validator.Validate
	logger     *zap.Logger
}

// MedicalPlanDeps groups the collaborators of MedicalPlanService.
type MedicalPlanDeps struct {
	Tx         txRunner
	Plans      medicalPlanRepository
	Consents   planConsentRepository
	Students   gradeStudentReader
	Executions planExecutionCleaner
	Parents    parentReader
	Users      userReader
	Mail       consentRequestMailer
}

// NewMedicalPlanService constructs the plan manager.
func NewMedicalPlanService(deps MedicalPlanDeps, validate *validator.Validate, logger *zap.Logger) *MedicalPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicalPlanService{
		tx:         deps.Tx,
		plans:      deps.Plans,
		consents:   deps.Consents,
		students:   deps.Students,
		executions: deps.Executions,
		parents:    deps.Parents,
		users:      deps.Users,
		mail:       deps.Mail,
		validator:  validate,
		logger:     logger,
	}
}

// Create persists a PLANNED plan and one PENDING consent per parented student of the target grade.
func (s *MedicalPlanService) Create(ctx context.Context, req dto.CreateMedicalPlanRequest, createdBy string) (*dto.MedicalPlanResponse, error) {
	if req.PlanType != "" && !req.PlanType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "invalid plan type")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid medical plan payload")
	}

	plan := &models.MedicalPlan{
		PlanType:    req.PlanType,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TargetGrade: req.TargetGrade,
		Status:      models.PlanStatusPlanned,
		CreatedBy:   createdBy,
	}

	var fanout consentFanout
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		if err := s.plans.Create(ctx, exec, plan); err != nil {
			return err
		}
		var err error
		fanout, err = s.generateConsents(ctx, exec, plan)
		return err
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create medical plan")
	}

	s.logger.Info("medical plan created",
		zap.String("plan_id", plan.ID),
		zap.String("grade", plan.TargetGrade),
		zap.Int("consents", len(fanout.consents)),
	)
	s.sendConsentRequests(ctx, plan, fanout)
	return &dto.MedicalPlanResponse{MedicalPlan: *plan, ConsentsCreated: len(fanout.consents)}, nil
}

// Get returns a plan by id.
func (s *MedicalPlanService) Get(ctx context.Context, id string) (*models.MedicalPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical plan not found")
		}
		return nil, appErrors.Internal(err, "failed to load medical plan")
	}
	return plan, nil
}

// Update edits a plan. Changing the target grade discards every consent of the plan,
// answered ones included, and requests consent from the new grade.
func (s *MedicalPlanService) Update(ctx context.Context, id string, req dto.UpdateMedicalPlanRequest) (*dto.MedicalPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid medical plan payload")
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	gradeChanged := req.TargetGrade != nil && *req.TargetGrade != plan.TargetGrade
	applyPlanUpdate(plan, req)
	if plan.EndDate.Before(plan.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}

	var fanout consentFanout
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		if err := s.plans.Update(ctx, exec, plan); err != nil {
			return err
		}
		if !gradeChanged {
			return nil
		}
		removed, err := s.consents.DeleteByPlan(ctx, exec, plan.ID, plan.PlanType)
		if err != nil {
			return err
		}
		s.logger.Info("target grade changed, consents reset",
			zap.String("plan_id", plan.ID),
			zap.String("grade", plan.TargetGrade),
			zap.Int64("removed", removed),
		)
		fanout, err = s.generateConsents(ctx, exec, plan)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical plan not found")
		}
		return nil, appErrors.Internal(err, "failed to update medical plan")
	}

	s.sendConsentRequests(ctx, plan, fanout)
	return &dto.MedicalPlanResponse{MedicalPlan: *plan, ConsentsCreated: len(fanout.consents)}, nil
}

// Delete removes a plan with its consents and execution records.
func (s *MedicalPlanService) Delete(ctx context.Context, id string) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		if _, err := s.consents.DeleteByPlan(ctx, exec, plan.ID, plan.PlanType); err != nil {
			return err
		}
		switch plan.PlanType {
		case models.PlanTypeVaccination:
			if _, err := s.executions.DeleteVaccinationsByPlan(ctx, exec, plan.ID); err != nil {
				return err
			}
		case models.PlanTypeHealthCheckup:
			if _, err := s.executions.DeleteCheckupsByPlan(ctx, exec, plan.ID); err != nil {
				return err
			}
		}
		return s.plans.Delete(ctx, exec, plan.ID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "medical plan not found")
		}
		return appErrors.Internal(err, "failed to delete medical plan")
	}
	s.logger.Info("medical plan deleted", zap.String("plan_id", plan.ID))
	return nil
}

type consentFanout struct {
	consents []models.Consent
	students map[string]models.Student
}

func (s *MedicalPlanService) generateConsents(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) (consentFanout, error) {
	students, err := s.students.ListByGradeWithParent(ctx, exec, plan.TargetGrade)
	if err != nil {
		return consentFanout{}, err
	}
	fanout := consentFanout{students: make(map[string]models.Student, len(students))}
	pending := make([]models.Consent, 0, len(students))
	for _, student := range students {
		if student.ParentID == nil || *student.ParentID == "" {
			continue
		}
		fanout.students[student.ID] = student
		pending = append(pending, models.Consent{
			StudentID:       student.ID,
			ParentID:        *student.ParentID,
			ConsentType:     plan.PlanType,
			ReferencePlanID: plan.ID,
			Status:          models.ConsentStatusPending,
		})
	}
	if len(pending) == 0 {
		return fanout, nil
	}
	fanout.consents, err = s.consents.CreateBatch(ctx, exec, pending)
	return fanout, err
}

func (s *MedicalPlanService) sendConsentRequests(ctx context.Context, plan *models.MedicalPlan, fanout consentFanout) {
	if s.mail == nil || s.parents == nil || s.users == nil {
		return
	}
	for _, consent := range fanout.consents {
		parent, err := s.parents.FindByID(ctx, consent.ParentID)
		if err != nil {
			s.logger.Warn("failed to resolve parent for consent email", zap.String("consent_id", consent.ID), zap.Error(err))
			continue
		}
		user, err := s.users.FindByID(ctx, parent.UserID)
		if err != nil {
			s.logger.Warn("failed to resolve parent account for consent email", zap.String("consent_id", consent.ID), zap.Error(err))
			continue
		}
		s.mail.SendConsentRequest(ConsentEmail{
			To:          user.Email,
			ParentName:  parent.FullName,
			StudentName: fanout.students[consent.StudentID].FullName,
			Plan:        *plan,
			ConsentID:   consent.ID,
		})
	}
}

func applyPlanUpdate(plan *models.MedicalPlan, req dto.UpdateMedicalPlanRequest) {
	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.StartDate != nil {
		plan.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		plan.EndDate = *req.EndDate
	}
	if req.TargetGrade != nil {
		plan.TargetGrade = *req.TargetGrade
	}
	if req.Status != nil {
		plan.Status = *req.Status
	}
}
