package eventbus

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/songdongsheng/EventBus/pkg/interfaces"
)

// ============================================================================
// 本地选项函数
// ============================================================================

// WithCapacity 设置待处理/在途事件容量
//
// 非正值使用默认容量。这是一个便利函数，与
// pkg/interfaces.WithCapacity 等效。
func WithCapacity(n int) pkgif.Opt {
	return pkgif.WithCapacity(n)
}

// WithClock 设置时钟源
//
// 这是一个便利函数，与 pkg/interfaces.WithClock 等效
func WithClock(c clock.Clock) pkgif.Opt {
	return pkgif.WithClock(c)
}

// WithFailureSink 设置失败上报通道
//
// 这是一个便利函数，与 pkg/interfaces.WithFailureSink 等效
func WithFailureSink(sink pkgif.FailureSink) pkgif.Opt {
	return pkgif.WithFailureSink(sink)
}

// WithMetricsRegisterer 设置 prometheus 注册器
//
// 这是一个便利函数，与 pkg/interfaces.WithMetricsRegisterer 等效
func WithMetricsRegisterer(r prometheus.Registerer) pkgif.Opt {
	return pkgif.WithMetricsRegisterer(r)
}
