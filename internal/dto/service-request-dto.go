package dto

type CreateServiceRequestDTO struct {
	Title           string   `json:"title" validate:"required,min=5,max=255"`
	RequestType     string   `json:"request_type" validate:"required"`
	ProjectRef      string   `json:"project_ref,omitempty"`
	ContractRef     string   `json:"contract_ref,omitempty"`
	Domain          string   `json:"domain" validate:"required"`
	RoleRequired    string   `json:"role_required" validate:"required"`
	Technology      string   `json:"technology" validate:"required"`
	ExperienceLevel string   `json:"experience_level" validate:"required"`
	ManDays         int      `json:"man_days" validate:"required,gt=0"`
	OnsiteDays      int      `json:"onsite_days" validate:"gte=0"`
	Location        string   `json:"location,omitempty"`
	MustHave        []string `json:"must_have,omitempty"`
	NiceToHave      []string `json:"nice_to_have,omitempty"`
	TaskDescription string   `json:"task_description,omitempty" validate:"omitempty,max=4000"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type SelectOfferDTO struct {
	OfferID string `json:"offer_id" validate:"required,uuid"`
}

type ServiceRequestResponseDTO struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	RequestType     string   `json:"request_type"`
	Status          string   `json:"status"`
	RequesterID     string   `json:"requester_id"`
	ProjectRef      *string  `json:"project_ref,omitempty"`
	ContractRef     *string  `json:"contract_ref,omitempty"`
	Domain          string   `json:"domain"`
	RoleRequired    string   `json:"role_required"`
	Technology      string   `json:"technology"`
	ExperienceLevel string   `json:"experience_level"`
	ManDays         int      `json:"man_days"`
	OnsiteDays      int      `json:"onsite_days"`
	Location        string   `json:"location,omitempty"`
	MustHave        []string `json:"must_have,omitempty"`
	NiceToHave      []string `json:"nice_to_have,omitempty"`
	TaskDescription string   `json:"task_description,omitempty"`
	BiddingActive   bool     `json:"bidding_active"`
	SelectedOfferID *string  `json:"selected_offer_id,omitempty"`
	RejectedReason  *string  `json:"rejected_reason,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type ServiceRequestListResponseDTO struct {
	List       []ServiceRequestResponseDTO `json:"list"`
	TotalCount uint64                      `json:"total_count"`
}
