package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"
)

// TopicOrderEvents — topic жизненного цикла заказов.
const TopicOrderEvents = "northwind.order.events"

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	CustomerID *string   `json:"customer_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
