package dto

type OpenSubstitutionDTO struct {
	NewSpecialistName string `json:"new_specialist_name" validate:"required,min=2"`
	Reason            string `json:"reason" validate:"required,min=3"`
}

type OpenExtensionDTO struct {
	NewEndDate       string  `json:"new_end_date" validate:"required,datetime=2006-01-02"`
	ExtraManDays     int     `json:"extra_man_days" validate:"required,gt=0"`
	NewContractValue float64 `json:"new_contract_value" validate:"required,gt=0"`
	Reason           string  `json:"reason" validate:"required,min=3"`
}

type RejectChangeDTO struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type ChangeRequestResponseDTO struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	Type       string `json:"type"`
	ProposerID string `json:"proposer_id"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`

	NewSpecialistName *string  `json:"new_specialist_name,omitempty"`
	NewEndDate        *string  `json:"new_end_date,omitempty"`
	ExtraManDays      *int     `json:"extra_man_days,omitempty"`
	NewContractValue  *float64 `json:"new_contract_value,omitempty"`

	RejectionReason *string `json:"rejection_reason,omitempty"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`

	CreatedAt string `json:"created_at"`
}
