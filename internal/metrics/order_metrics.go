package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	opsTotal   *prometheus.CounterVec
	opsFailed  *prometheus.CounterVec
	opDuration *prometheus.HistogramVec

	rollbacks prometheus.Counter
}

// NewOrderMetrics создаёт метрики, зарегистрированные в реестре по умолчанию.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		opsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "northwind_order_operations_total",
			Help: "Total number of order repository operations",
		}, []string{"op"}),
		opsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "northwind_order_operation_failures_total",
			Help: "Total number of failed order repository operations",
		}, []string{"op"}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "northwind_order_operation_duration_seconds",
			Help:    "Duration of order repository operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"op"}),
		rollbacks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "northwind_order_tx_rollbacks_total",
			Help: "Total number of rolled back order transactions",
		}),
	}
}

// RecordOp фиксирует завершённую операцию: счётчик, длительность и,
// для мутаций, откат транзакции при ошибке.
func (m *OrderMetrics) RecordOp(op string, duration time.Duration, err error) {
	m.opsTotal.WithLabelValues(op).Inc()
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.opsFailed.WithLabelValues(op).Inc()
	}
}

// RecordRollback увеличивает счётчик откатов.
func (m *OrderMetrics) RecordRollback() {
	m.rollbacks.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
