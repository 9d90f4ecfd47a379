package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherMetric(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func counterValue(t *testing.T, family *dto.MetricFamily, op string) float64 {
	t.Helper()
	if family == nil {
		return 0
	}
	for _, m := range family.GetMetric() {
		matched := op == ""
		for _, label := range m.GetLabel() {
			if label.GetName() == "op" && label.GetValue() == op {
				matched = true
			}
		}
		if matched {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordOp(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOp("create_order", 25*time.Millisecond, nil)
	m.RecordOp("create_order", 40*time.Millisecond, errors.New("boom"))
	m.RecordOp("get_order", 5*time.Millisecond, nil)

	total := gatherMetric(t, registry, "northwind_order_operations_total")
	if got := counterValue(t, total, "create_order"); got != 2 {
		t.Errorf("expected 2 create_order ops, got %v", got)
	}
	if got := counterValue(t, total, "get_order"); got != 1 {
		t.Errorf("expected 1 get_order op, got %v", got)
	}

	failed := gatherMetric(t, registry, "northwind_order_operation_failures_total")
	if got := counterValue(t, failed, "create_order"); got != 1 {
		t.Errorf("expected 1 create_order failure, got %v", got)
	}
	if got := counterValue(t, failed, "get_order"); got != 0 {
		t.Errorf("expected no get_order failures, got %v", got)
	}

	duration := gatherMetric(t, registry, "northwind_order_operation_duration_seconds")
	if duration == nil {
		t.Fatal("duration histogram not registered")
	}
	for _, m := range duration.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "op" && label.GetValue() == "create_order" {
				if m.GetHistogram().GetSampleCount() != 2 {
					t.Errorf("expected 2 duration samples, got %d", m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
}

func TestRecordRollback(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordRollback()
	m.RecordRollback()

	rollbacks := gatherMetric(t, registry, "northwind_order_tx_rollbacks_total")
	if got := counterValue(t, rollbacks, ""); got != 2 {
		t.Errorf("expected 2 rollbacks, got %v", got)
	}
}

func TestRepeatedRegistrationReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	first.RecordOp("delete_order", time.Millisecond, nil)
	second.RecordOp("delete_order", time.Millisecond, nil)

	total := gatherMetric(t, registry, "northwind_order_operations_total")
	if got := counterValue(t, total, "delete_order"); got != 2 {
		t.Errorf("expected shared counter to read 2, got %v", got)
	}
}
