package domain

import "time"

// Webhook topics pushed by the shop.
const (
	TopicOrderCreated = "order-created"
	TopicOrderUpdated = "order-updated"
)

// OrderEvent is one order lifecycle notification from the shop. For
// TopicOrderUpdated, OldStatus and NewStatus carry the transition.
type OrderEvent struct {
	Topic      string    `json:"topic"`
	Order      *Order    `json:"order"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// SyncResult is the transient outcome of one delivery attempt, published to
// in-process subscribers (admin activity feed). It is not persisted; the
// durable record is the order's note and synced flag.
type SyncResult struct {
	ID         string    `json:"id"`
	OrderID    int64     `json:"order_id"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
