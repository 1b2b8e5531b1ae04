package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// WorkflowHistory - журнал переходов по сущностям workflow (заявки, заказы,
// изменения, отзывы). Только добавление, записи не правятся.
type WorkflowHistory struct {
	ID         string      `db:"id"`
	EntityType string      `db:"entity_type"`
	EntityID   string      `db:"entity_id"`
	ActorID    string      `db:"actor_id"`
	EventType  string      `db:"event_type"`
	OldValue   null.String `db:"old_value"`
	NewValue   null.String `db:"new_value"`
	Comment    null.String `db:"comment"`
	CreatedAt  time.Time   `db:"created_at"`
}
