package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusshield/campusshield/internal/common/config"
)

type Metrics struct {
	registry   *prometheus.Registry
	namespace  string
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	reportCnt  *prometheus.CounterVec
	sirenCnt   *prometheus.CounterVec
	notifCnt   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = "campusshield"
	}
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	reportCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "reports_total"}, []string{"action"})
	sirenCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "siren_alerts_total"}, []string{"caller"})
	notifCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "notifications_total"}, []string{"kind", "status"})
	r.MustRegister(reportCnt, sirenCnt, notifCnt)

	return &Metrics{
		registry:   r,
		namespace:  ns,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		reportCnt:  reportCnt,
		sirenCnt:   sirenCnt,
		notifCnt:   notifCnt,
	}
}

// ReportAction counts a report lifecycle action (created, status_changed,
// deleted).
func (m *Metrics) ReportAction(action string) {
	m.reportCnt.WithLabelValues(action).Inc()
}

// SirenReceived counts a siren alert by caller kind (user, anonymous).
func (m *Metrics) SirenReceived(caller string) {
	m.sirenCnt.WithLabelValues(caller).Inc()
}

// NotificationSent implements notify.Recorder.
func (m *Metrics) NotificationSent(kind string) {
	m.notifCnt.WithLabelValues(kind, "sent").Inc()
}

// NotificationFailed implements notify.Recorder.
func (m *Metrics) NotificationFailed(kind string) {
	m.notifCnt.WithLabelValues(kind, "failed").Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
