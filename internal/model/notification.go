package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationChannelInApp = "in_app"
	NotificationChannelEmail = "email"
)

// Notification is the user-visible message emitted after lifecycle
// transitions. Delivery is fire-and-forget; the scheduling core never
// consumes its result.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsError   bool      `json:"is_error"`
	Recipient string    `json:"recipient,omitempty"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}
