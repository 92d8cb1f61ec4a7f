package dto

// UpdateCheckupRequest holds checkup result fields; nil fields are left untouched.
type UpdateCheckupRequest struct {
	CheckupType      *string `json:"checkup_type"`
	Result           *string `json:"result"`
	AbnormalFindings *string `json:"abnormal_findings"`
	Recommendations  *string `json:"recommendations"`
	FollowUpRequired *bool   `json:"follow_up_required"`
}

// UpdateVaccinationRequest holds vaccination result fields; nil fields are left untouched.
type UpdateVaccinationRequest struct {
	VaccineName      *string `json:"vaccine_name"`
	BatchNumber      *string `json:"batch_number"`
	DoseNumber       *int    `json:"dose_number" validate:"omitempty,min=1"`
	Reaction         *string `json:"reaction"`
	Notes            *string `json:"notes"`
	FollowUpRequired *bool   `json:"follow_up_required"`
}
