package dto

type SubmitFeedbackDTO struct {
	Overall       int    `json:"overall" validate:"required,min=1,max=5"`
	Quality       int    `json:"quality" validate:"required,min=1,max=5"`
	Communication int    `json:"communication" validate:"required,min=1,max=5"`
	Value         int    `json:"value" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=1000"`
	Anonymous     bool   `json:"anonymous"`
}

type FeedbackResponseDTO struct {
	Overall       int    `json:"overall"`
	Quality       int    `json:"quality"`
	Communication int    `json:"communication"`
	Value         int    `json:"value"`
	Comment       string `json:"comment"`
	Anonymous     bool   `json:"anonymous"`
	// AuthorID скрывается для анонимных отзывов.
	AuthorID  *string `json:"author_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type SupplierRatingDTO struct {
	SupplierID    string  `json:"supplier_id"`
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int     `json:"feedback_count"`
}
