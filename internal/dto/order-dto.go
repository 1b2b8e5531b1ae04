package dto

type RejectOrderDTO struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type OrderResponseDTO struct {
	ID                   string  `json:"id"`
	SourceRequestID      string  `json:"source_request_id"`
	OfferID              string  `json:"offer_id"`
	SupplierID           string  `json:"supplier_id"`
	SupplierName         string  `json:"supplier_name"`
	SpecialistName       string  `json:"specialist_name"`
	DailyRate            float64 `json:"daily_rate"`
	TravelCost           float64 `json:"travel_cost"`
	Relationship         string  `json:"relationship"`
	SubcontractorCompany *string `json:"subcontractor_company,omitempty"`
	Currency             string  `json:"currency"`
	ContractValue        float64 `json:"contract_value"`
	ManDays              int     `json:"man_days"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`

	// Хранимый статус и проекция для отображения.
	Status            string `json:"status"`
	DisplayState      string `json:"display_state"`
	ProviderConfirmed bool   `json:"provider_confirmed"`

	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`

	PendingChangeID *string `json:"pending_change_id,omitempty"`

	Feedback *FeedbackResponseDTO `json:"feedback,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type OrderListResponseDTO struct {
	List       []OrderResponseDTO `json:"list"`
	TotalCount uint64             `json:"total_count"`
}
