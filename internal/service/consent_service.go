package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/internal/repository"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type consentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Consent, error)
	Respond(ctx context.Context, params repository.RespondParams) error
	ListByParent(ctx context.Context, parentID string, statuses []models.ConsentStatus) ([]models.ConsentDetail, error)
}

type consentTokenParser interface {
	Parse(raw string) (*models.ConsentTokenClaims, error)
}

// ResponseAuth describes who answers a consent and through which channel.
// ParentID is empty on the signed-link channel, where the token itself is the credential.
type ResponseAuth struct {
	ParentID string
	Channel  string
	Notes    *string
}

// ConsentService owns the single PENDING to APPROVED/REJECTED transition of a consent.
type ConsentService struct {
	consents  consentRepository
	tokens    consentTokenParser
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewConsentService constructs the gateway.
func NewConsentService(consents consentRepository, tokens consentTokenParser, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ConsentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsentService{
		consents:  consents,
		tokens:    tokens,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// RespondAsParent applies an authenticated parent's decision.
func (s *ConsentService) RespondAsParent(ctx context.Context, parentID, consentID string, req dto.RespondConsentRequest) (*models.Consent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consent response payload")
	}
	var notes *string
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = &trimmed
	}
	return s.Respond(ctx, consentID, req.Status, ResponseAuth{ParentID: parentID, Channel: ConsentChannelApp, Notes: notes})
}

// RespondWithToken applies the decision embedded in a signed email link.
// The token is verified before anything is read.
func (s *ConsentService) RespondWithToken(ctx context.Context, token string) (*models.Consent, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.Respond(ctx, claims.ConsentID, claims.Status, ResponseAuth{Channel: ConsentChannelEmail})
}

// Respond moves a pending consent to status. Answered consents are never reopened.
func (s *ConsentService) Respond(ctx context.Context, consentID string, status models.ConsentStatus, auth ResponseAuth) (*models.Consent, error) {
	if !status.IsDecision() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be APPROVED or REJECTED")
	}

	consent, err := s.consents.FindByID(ctx, consentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "consent not found")
		}
		return nil, appErrors.Internal(err, "failed to load consent")
	}
	if auth.Channel == ConsentChannelApp && consent.ParentID != auth.ParentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "consent belongs to another parent")
	}
	if consent.Status != models.ConsentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "consent has already been answered")
	}

	notes := auth.Notes
	if auth.Channel == ConsentChannelEmail {
		note := emailResponseNote(consent.ConsentType, status)
		notes = &note
	}
	respondedAt := s.now().UTC()
	err = s.consents.Respond(ctx, repository.RespondParams{
		ID:           consent.ID,
		Status:       status,
		ResponseDate: respondedAt,
		Notes:        notes,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "consent has already been answered")
		}
		return nil, appErrors.Internal(err, "failed to record consent response")
	}

	consent.Status = status
	consent.ResponseDate = &respondedAt
	consent.Notes = notes
	s.metrics.RecordConsentResponse(auth.Channel, status)
	s.logger.Info("consent answered",
		zap.String("consent_id", consent.ID),
		zap.String("status", string(status)),
		zap.String("channel", auth.Channel),
	)
	return consent, nil
}

// ListPending returns the parent's unanswered consents, newest request first.
func (s *ConsentService) ListPending(ctx context.Context, parentID string) ([]models.ConsentDetail, error) {
	return s.list(ctx, parentID, models.ConsentStatusPending)
}

// ListHistory returns the parent's answered consents, most recent response first.
func (s *ConsentService) ListHistory(ctx context.Context, parentID string) ([]models.ConsentDetail, error) {
	return s.list(ctx, parentID, models.ConsentStatusApproved, models.ConsentStatusRejected)
}

func (s *ConsentService) list(ctx context.Context, parentID string, statuses ...models.ConsentStatus) ([]models.ConsentDetail, error) {
	consents, err := s.consents.ListByParent(ctx, parentID, statuses)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list consents")
	}
	if consents == nil {
		consents = []models.ConsentDetail{}
	}
	return consents, nil
}

func emailResponseNote(planType models.PlanType, status models.ConsentStatus) string {
	action := "khám sức khỏe"
	if planType == models.PlanTypeVaccination {
		action = "tiêm chủng"
	}
	if status == models.ConsentStatusApproved {
		return "Phụ huynh đồng ý " + action + " qua email"
	}
	return "Phụ huynh từ chối " + action + " qua email"
}
