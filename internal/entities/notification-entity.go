package entities

import "time"

// Notification - внутриуведомление пользователю о переходе по workflow.
type Notification struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Message    string    `db:"message"`
	IsRead     bool      `db:"is_read"`
	CreatedAt  time.Time `db:"created_at"`
}
