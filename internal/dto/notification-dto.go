package dto

type NotificationResponseDTO struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Message    string `json:"message"`
	IsRead     bool   `json:"is_read"`
	CreatedAt  string `json:"created_at"`
}

type WorkflowHistoryResponseDTO struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	ActorID    string  `json:"actor_id"`
	EventType  string  `json:"event_type"`
	OldValue   *string `json:"old_value,omitempty"`
	NewValue   *string `json:"new_value,omitempty"`
	Comment    *string `json:"comment,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
