package kafka

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOrderEventJSON(t *testing.T) {
	customer := "ALFKI"
	event := OrderEvent{
		EventID:    "e-1",
		EventType:  EventTypeOrderCreated,
		OrderID:    10248,
		CustomerID: &customer,
		Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["event_type"] != "order.created" {
		t.Errorf("unexpected event_type: %v", decoded["event_type"])
	}
	if decoded["order_id"] != float64(10248) {
		t.Errorf("unexpected order_id: %v", decoded["order_id"])
	}
	if decoded["customer_id"] != "ALFKI" {
		t.Errorf("unexpected customer_id: %v", decoded["customer_id"])
	}
}

func TestOrderEventJSON_OmitsEmptyCustomer(t *testing.T) {
	event := OrderEvent{
		EventID:   "e-2",
		EventType: EventTypeOrderDeleted,
		OrderID:   10249,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["customer_id"]; ok {
		t.Error("customer_id must be omitted for nil customer")
	}
}
