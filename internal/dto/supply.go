package dto

// RecordSupplyUsageRequest consumes stock against a medical event.
type RecordSupplyUsageRequest struct {
	ItemID           string `json:"item_id" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1"`
	Reason           string `json:"reason" validate:"required,max=500"`
	ReferenceEventID string `json:"reference_event_id" validate:"required"`
}

// SupplyUsageResponse reports the remaining stock after usage.
type SupplyUsageResponse struct {
	LogID             string `json:"log_id"`
	ItemID            string `json:"item_id"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

// AlertScanResult summarises one inventory scan.
type AlertScanResult struct {
	ItemsScanned         int `json:"items_scanned"`
	LowStock             int `json:"low_stock"`
	ExpirySoon           int `json:"expiry_soon"`
	NotificationsCreated int `json:"notifications_created"`
}
