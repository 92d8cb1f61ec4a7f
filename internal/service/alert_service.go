package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

const inventoryAlertsCacheKey = "inventory:alerts"

type inventoryLister interface {
	ListActive(ctx context.Context) ([]models.InventoryItem, error)
}

type managerNotifier interface {
	SendToManagers(ctx context.Context, title, content string, kind models.NotificationType, priority models.NotificationPriority) error
}

type alertCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AlertConfig tunes the inventory scan.
type AlertConfig struct {
	ExpiryWindow time.Duration
	CacheTTL     time.Duration
}

// AlertService flags low-stock and soon-expiring supplies and tells managers about them.
type AlertService struct {
	items    inventoryLister
	notifier managerNotifier
	cache    alertCache
	metrics  *MetricsService
	logger   *zap.Logger
	config   AlertConfig
	now      func() time.Time
}

// NewAlertService constructs the scheduler-facing alert service.
func NewAlertService(items inventoryLister, notifier managerNotifier, cache alertCache, metrics *MetricsService, logger *zap.Logger, cfg AlertConfig) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = 30 * 24 * time.Hour
	}
	return &AlertService{
		items:    items,
		notifier: notifier,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
	}
}

// RunScheduled is the daily job entry point.
func (s *AlertService) RunScheduled(ctx context.Context) error {
	result, err := s.Scan(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("inventory alert scan finished",
		zap.Int("items", result.ItemsScanned),
		zap.Int("low_stock", result.LowStock),
		zap.Int("expiry_soon", result.ExpirySoon),
	)
	return nil
}

// Scan classifies every active item and sends one manager notification per flagged
// item and alert type, so an item both low and expiring yields two notifications.
// The scan keeps no state, so an unresolved condition is reported again on the next run.
func (s *AlertService) Scan(ctx context.Context) (*dto.AlertScanResult, error) {
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list inventory items")
	}
	alerts := s.classify(items)

	result := &dto.AlertScanResult{ItemsScanned: len(items)}
	for _, alert := range alerts {
		var kind models.NotificationType
		switch alert.Type {
		case models.AlertTypeLowStock:
			result.LowStock++
			kind = models.NotificationTypeLowStock
		case models.AlertTypeExpirySoon:
			result.ExpirySoon++
			kind = models.NotificationTypeExpirySoon
		default:
			continue
		}
		title, content := describeAlert(alert)
		if s.send(ctx, title, content, kind, alert.ItemID) {
			result.NotificationsCreated++
		}
	}
	s.metrics.RecordInventoryAlerts(models.AlertTypeLowStock, result.LowStock)
	s.metrics.RecordInventoryAlerts(models.AlertTypeExpirySoon, result.ExpirySoon)

	s.store(ctx, alerts)
	return result, nil
}

// Current returns the alerts for the present stock, served from cache when possible.
func (s *AlertService) Current(ctx context.Context) ([]models.InventoryAlert, error) {
	if s.cache != nil {
		var cached []models.InventoryAlert
		hit, err := s.cache.Get(ctx, inventoryAlertsCacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list inventory items")
	}
	alerts := s.classify(items)
	s.store(ctx, alerts)
	return alerts, nil
}

func (s *AlertService) classify(items []models.InventoryItem) []models.InventoryAlert {
	deadline := s.now().Add(s.config.ExpiryWindow)
	alerts := make([]models.InventoryAlert, 0)
	for _, item := range items {
		if item.Quantity < item.MinimumStockLevel {
			alerts = append(alerts, models.InventoryAlert{
				ItemID:   item.ID,
				ItemName: item.Name,
				Type:     models.AlertTypeLowStock,
				Quantity: item.Quantity,
				Minimum:  item.MinimumStockLevel,
			})
		}
		if item.ExpiryDate != nil && !item.ExpiryDate.After(deadline) {
			alerts = append(alerts, models.InventoryAlert{
				ItemID:     item.ID,
				ItemName:   item.Name,
				Type:       models.AlertTypeExpirySoon,
				Quantity:   item.Quantity,
				Minimum:    item.MinimumStockLevel,
				ExpiryDate: item.ExpiryDate,
			})
		}
	}
	return alerts
}

func (s *AlertService) send(ctx context.Context, title, content string, kind models.NotificationType, itemID string) bool {
	if s.notifier == nil {
		return false
	}
	if err := s.notifier.SendToManagers(ctx, title, content, kind, models.PriorityHigh); err != nil {
		s.logger.Warn("failed to notify managers",
			zap.String("type", string(kind)),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *AlertService) store(ctx context.Context, alerts []models.InventoryAlert) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, inventoryAlertsCacheKey, alerts, s.config.CacheTTL); err != nil {
		s.logger.Debug("failed to cache inventory alerts", zap.Error(err))
	}
}

func describeAlert(alert models.InventoryAlert) (string, string) {
	if alert.Type == models.AlertTypeExpirySoon {
		return "Cảnh báo vật tư sắp hết hạn: " + alert.ItemName,
			fmt.Sprintf("%s (còn %d) hết hạn ngày %s.", alert.ItemName, alert.Quantity, alert.ExpiryDate.Format("02/01/2006"))
	}
	return "Cảnh báo vật tư sắp hết: " + alert.ItemName,
		fmt.Sprintf("%s chỉ còn %d, dưới mức tồn kho tối thiểu %d.", alert.ItemName, alert.Quantity, alert.Minimum)
}
