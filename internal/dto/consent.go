package dto

import "github.com/noah-isme/sma-health-api/internal/models"

// RespondConsentRequest captures an authenticated parent's decision.
type RespondConsentRequest struct {
	Status models.ConsentStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Notes  string               `json:"notes" validate:"max=1000"`
}
