package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks the order-to-payout pipeline.
type PipelineMetrics struct {
	ordersCreated      *prometheus.CounterVec
	orderItemsFailed   prometheus.Counter
	withdrawalsOpened  prometheus.Counter
	withdrawalsSettled *prometheus.CounterVec
	gatewayLookup      *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
// A nil registerer yields a no-op collector, which keeps tests quiet.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders persisted after successful payment verification.",
	}, []string{"payment_method"})
	orderItemsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_items_credit_failed_total",
		Help: "Order items whose seller crediting failed.",
	})
	withdrawalsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "withdrawals_requested_total",
		Help: "Withdrawal requests accepted and reserved.",
	})
	withdrawalsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawals_settled_total",
		Help: "Withdrawal requests moved to a decided status.",
	}, []string{"status"})
	gatewayLookup := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_lookup_duration_seconds",
		Help:    "Duration of payment gateway verification lookups.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(ordersCreated, orderItemsFailed, withdrawalsOpened, withdrawalsSettled, gatewayLookup)
	return &PipelineMetrics{
		ordersCreated:      ordersCreated,
		orderItemsFailed:   orderItemsFailed,
		withdrawalsOpened:  withdrawalsOpened,
		withdrawalsSettled: withdrawalsSettled,
		gatewayLookup:      gatewayLookup,
	}
}

// IncOrderCreated records a persisted order for the given payment method.
func (m *PipelineMetrics) IncOrderCreated(method string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncOrderItemFailed records one item whose seller credit failed.
func (m *PipelineMetrics) IncOrderItemFailed() {
	if m == nil || m.orderItemsFailed == nil {
		return
	}
	m.orderItemsFailed.Inc()
}

// IncWithdrawalRequested records one accepted withdrawal request.
func (m *PipelineMetrics) IncWithdrawalRequested() {
	if m == nil || m.withdrawalsOpened == nil {
		return
	}
	m.withdrawalsOpened.Inc()
}

// IncWithdrawalSettled records a settlement decision by resulting status.
func (m *PipelineMetrics) IncWithdrawalSettled(status string) {
	if m == nil || m.withdrawalsSettled == nil {
		return
	}
	m.withdrawalsSettled.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveGatewayLookup records how long a verification lookup took.
func (m *PipelineMetrics) ObserveGatewayLookup(provider string, duration time.Duration) {
	if m == nil || m.gatewayLookup == nil {
		return
	}
	m.gatewayLookup.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
