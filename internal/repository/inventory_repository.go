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

const inventoryColumns = `id, name, item_type, quantity, unit, expiry_date, minimum_stock_level, active`

// InventoryRepository persists medical supplies and their movement log.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository constructs the repository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindByID loads an item regardless of its active flag.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	const query = `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`
	var item models.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find inventory item: %w", err)
	}
	return &item, nil
}

// ListActive returns every active item ordered by name.
func (r *InventoryRepository) ListActive(ctx context.Context) ([]models.InventoryItem, error) {
	const query = `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE active = TRUE ORDER BY name`
	var items []models.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}

// Consume decrements the stock of an active item when enough is available and returns the remaining quantity.
// sql.ErrNoRows means the item vanished, was deactivated, or holds less than qty.
func (r *InventoryRepository) Consume(ctx context.Context, exec sqlx.ExtContext, id string, qty int) (int, error) {
	const query = `UPDATE inventory_items SET quantity = quantity - $2
WHERE id = $1 AND active = TRUE AND quantity >= $2
RETURNING quantity`
	var remaining int
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &remaining, query, id, qty); err != nil {
		if isMissing(err) {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("consume inventory item: %w", err)
	}
	return remaining, nil
}

// CreateSupplyLog appends an inventory movement.
func (r *InventoryRepository) CreateSupplyLog(ctx context.Context, exec sqlx.ExtContext, entry *models.SupplyLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.LogDate.IsZero() {
		entry.LogDate = time.Now().UTC()
	}
	const query = `INSERT INTO supply_logs (id, item_id, user_id, action, quantity, reason, log_date, reference_event_id)
VALUES (:id, :item_id, :user_id, :action, :quantity, :reason, :log_date, :reference_event_id)`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, entry); err != nil {
		return fmt.Errorf("create supply log: %w", err)
	}
	return nil
}
