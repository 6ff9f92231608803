package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeScheduled 成功创建定时消息的结果标签
const OutcomeScheduled = "scheduled"

// Metrics Prometheus 指标
// 方法对 nil 接收者安全，未启用指标时可直接传 nil
type Metrics struct {
	requests       *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
}

// NewMetrics 创建指标并注册到 reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openclaw_slack",
				Name:      "schedule_requests_total",
				Help:      "Schedule requests by outcome (scheduled or error kind).",
			},
			[]string{"outcome"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "openclaw_slack",
				Name:      "remote_call_duration_seconds",
				Help:      "Latency of Slack Web API calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.remoteDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSchedule 记录一次编排结果
func (m *Metrics) ObserveSchedule(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// ObserveRemoteCall 记录一次远程调用耗时
func (m *Metrics) ObserveRemoteCall(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.remoteDuration.WithLabelValues(op, status).Observe(d.Seconds())
}
