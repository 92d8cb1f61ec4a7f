package models

import "time"

// InventoryItem is a stocked medical supply.
type InventoryItem struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	ItemType          string     `db:"item_type" json:"item_type"`
	Quantity          int        `db:"quantity" json:"quantity"`
	Unit              string     `db:"unit" json:"unit"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	MinimumStockLevel int        `db:"minimum_stock_level" json:"minimum_stock_level"`
	Active            bool       `db:"active" json:"active"`
}

// SupplyAction labels an inventory movement.
type SupplyAction string

const SupplyActionUse SupplyAction = "USE"

// SupplyLog is the append-only audit trail of inventory movements.
type SupplyLog struct {
	ID               string       `db:"id" json:"id"`
	ItemID           string       `db:"item_id" json:"item_id"`
	UserID           string       `db:"user_id" json:"user_id"`
	Action           SupplyAction `db:"action" json:"action"`
	Quantity         int          `db:"quantity" json:"quantity"`
	Reason           string       `db:"reason" json:"reason"`
	LogDate          time.Time    `db:"log_date" json:"log_date"`
	ReferenceEventID string       `db:"reference_event_id" json:"reference_event_id"`
}

// AlertType classifies inventory alerts.
type AlertType string

const (
	AlertTypeLowStock   AlertType = "LOW_STOCK"
	AlertTypeExpirySoon AlertType = "EXPIRY_SOON"
)

// InventoryAlert is one flagged condition for an item.
type InventoryAlert struct {
	ItemID     string     `json:"item_id"`
	ItemName   string     `json:"item_name"`
	Type       AlertType  `json:"type"`
	Quantity   int        `json:"quantity"`
	Minimum    int        `json:"minimum_stock_level"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}
