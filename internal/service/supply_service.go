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

var errInsufficientStock = errors.New("insufficient stock")

type inventoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Consume(ctx context.Context, exec sqlx.ExtContext, id string, qty int) (int, error)
	CreateSupplyLog(ctx context.Context, exec sqlx.ExtContext, entry *models.SupplyLog) error
}

type medicalEventReader interface {
	FindByID(ctx context.Context, id string) (*models.MedicalEvent, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// SupplyService consumes inventory against medical events.
type SupplyService struct {
	tx        txRunner
	inventory inventoryRepository
	events    medicalEventReader
	nurses    nurseReader
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupplyService constructs the ledger.
func NewSupplyService(tx txRunner, inventory inventoryRepository, events medicalEventReader, nurses nurseReader, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SupplyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplyService{
		tx:        tx,
		inventory: inventory,
		events:    events,
		nurses:    nurses,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// RecordUsage decrements stock and appends a USE log entry as one unit.
func (s *SupplyService) RecordUsage(ctx context.Context, req dto.RecordSupplyUsageRequest, nurseID string) (*dto.SupplyUsageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supply usage payload")
	}

	item, err := s.inventory.FindByID(ctx, req.ItemID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load inventory item")
	}
	if item == nil || !item.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "inventory item not found")
	}
	event, err := s.events.FindByID(ctx, req.ReferenceEventID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load medical event")
	}
	if event == nil || !event.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "medical event not found")
	}
	nurse, err := s.nurses.FindByID(ctx, nurseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nurse not found")
		}
		return nil, appErrors.Internal(err, "failed to load nurse")
	}
	if item.Quantity < req.Quantity {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "insufficient quantity")
	}

	entry := &models.SupplyLog{
		ItemID:           item.ID,
		UserID:           nurse.UserID,
		Action:           models.SupplyActionUse,
		Quantity:         req.Quantity,
		Reason:           req.Reason,
		ReferenceEventID: event.ID,
	}
	var remaining int
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		left, err := s.inventory.Consume(ctx, exec, item.ID, req.Quantity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errInsufficientStock
			}
			return err
		}
		remaining = left
		return s.inventory.CreateSupplyLog(ctx, exec, entry)
	})
	if err != nil {
		if errors.Is(err, errInsufficientStock) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "insufficient quantity")
		}
		return nil, appErrors.Internal(err, "failed to record supply usage")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, inventoryAlertsCacheKey); err != nil {
			s.logger.Warn("failed to invalidate inventory alerts cache", zap.Error(err))
		}
	}
	s.logger.Info("supply consumed",
		zap.String("item_id", item.ID),
		zap.String("event_id", event.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("remaining", remaining),
	)
	return &dto.SupplyUsageResponse{LogID: entry.ID, ItemID: item.ID, RemainingQuantity: remaining}, nil
}
