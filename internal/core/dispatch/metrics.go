package dispatch

import "github.com/prometheus/client_golang/prometheus"

// ============================================================================
// Prometheus 指标
// ============================================================================

// busMetrics 单个引擎实例的指标集合
//
// Registerer 为 nil 时指标对象照常工作，只是不对外暴露；
// 引擎代码无需判空。每个实例的指标携带 bus 标签（实例 ID），
// 同一 Registerer 可以注册多个实例。
type busMetrics struct {
	posted            prometheus.Counter
	delivered         prometheus.Counter
	handlerErrors     prometheus.Counter
	backpressureWaits prometheus.Counter
}

// newBusMetrics 创建并（可选）注册引擎指标
func newBusMetrics(engine, busID string, reg prometheus.Registerer) *busMetrics {
	labels := prometheus.Labels{"bus": busID}

	m := &busMetrics{
		posted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Subsystem:   engine,
			Name:        "events_posted_total",
			Help:        "Total number of events posted.",
			ConstLabels: labels,
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Subsystem:   engine,
			Name:        "events_delivered_total",
			Help:        "Total number of events fully dispatched to all matched handlers.",
			ConstLabels: labels,
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Subsystem:   engine,
			Name:        "handler_errors_total",
			Help:        "Total number of handler invocations that failed or panicked.",
			ConstLabels: labels,
		}),
		backpressureWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Subsystem:   engine,
			Name:        "backpressure_waits_total",
			Help:        "Total number of backpressure wait cycles observed by posters.",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.posted, m.delivered, m.handlerErrors, m.backpressureWaits)
	}
	return m
}

// registerPendingGauge 注册待处理事件数仪表
func registerPendingGauge(engine, busID string, reg prometheus.Registerer, fn func() float64) {
	if reg == nil {
		return
	}
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "eventbus",
		Subsystem:   engine,
		Name:        "pending_events",
		Help:        "Current number of pending or in-flight events.",
		ConstLabels: prometheus.Labels{"bus": busID},
	}, fn))
}
