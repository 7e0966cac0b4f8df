package events

import (
	"time"

	"github.com/spec-kit/storefront-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventProductCreated  EventType = "product_created"
	EventProductUpdated  EventType = "product_updated"
	EventProductDeleted  EventType = "product_deleted"
	EventCartCreated     EventType = "cart_created"
	EventCartReplaced    EventType = "cart_replaced"
	EventCartLineAdded   EventType = "cart_line_added"
	EventCartLineUpdated EventType = "cart_line_updated"
	EventCartLineRemoved EventType = "cart_line_removed"
	EventCartCleared     EventType = "cart_cleared"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email     string  `json:"email"`
	Provider  *string `json:"provider,omitempty"`
	Federated bool    `json:"federated"`
}

// ProductChangedPayload payload for product create/update/delete.
type ProductChangedPayload struct {
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// CartLinePayload payload for line-level cart events.
type CartLinePayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"`
	LineCount int    `json:"line_count"`
}

// CartLines summarizes a cart's lines for event payloads.
func CartLines(cart *domain.Cart) int {
	if cart == nil {
		return 0
	}
	return len(cart.Lines)
}
