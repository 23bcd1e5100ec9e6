// Package metrics exposes prometheus instruments for billing and HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics tracks invoice generation outcomes.
type BillingMetrics struct {
	runsTotal         *prometheus.CounterVec
	invoicesTotal     *prometheus.CounterVec
	runDuration       prometheus.Histogram
	customersSkipped  prometheus.Counter
	notificationsSent prometheus.Counter
}

// NewBillingMetrics registers billing instruments on the given registerer.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	m := &BillingMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isrcrm_billing_runs_total",
			Help: "Monthly billing sweeps executed, by trigger.",
		}, []string{"trigger"}),
		invoicesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isrcrm_billing_invoices_total",
			Help: "Per-customer invoice generation outcomes.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isrcrm_billing_run_duration_seconds",
			Help:    "Duration of a full billing sweep.",
			Buckets: prometheus.DefBuckets,
		}),
		customersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isrcrm_billing_customers_skipped_total",
			Help: "Customers skipped by the pending-invoice guard.",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isrcrm_billing_notifications_total",
			Help: "Operator notifications emitted after billing runs.",
		}),
	}
	reg.MustRegister(m.runsTotal, m.invoicesTotal, m.runDuration, m.customersSkipped, m.notificationsSent)
	return m
}

// NewDefaultBillingMetrics registers on the default prometheus registerer.
func NewDefaultBillingMetrics() *BillingMetrics {
	return NewBillingMetrics(prometheus.DefaultRegisterer)
}

func (m *BillingMetrics) IncRun(trigger string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(trigger).Inc()
}

func (m *BillingMetrics) IncInvoice(succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.invoicesTotal.WithLabelValues(result).Inc()
}

func (m *BillingMetrics) ObserveRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

func (m *BillingMetrics) IncSkipped() {
	if m == nil {
		return
	}
	m.customersSkipped.Inc()
}

func (m *BillingMetrics) IncNotification() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

// HTTPMetrics tracks request counts and latency per route.
type HTTPMetrics struct {
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isrcrm_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isrcrm_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requestsTotal, m.duration)
	return m
}

func NewDefaultHTTPMetrics() *HTTPMetrics {
	return NewHTTPMetrics(prometheus.DefaultRegisterer)
}

// GinMiddleware records request metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
