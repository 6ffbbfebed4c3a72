// 本文件定义 Bus 接口，提供按事件运行时类型路由的发布订阅功能。
package interfaces

import (
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCapacity 默认容量（待处理/在途事件上限）
const DefaultCapacity = 1 << 20

// Bus 定义事件总线接口
//
// 两种调度引擎共享同一契约：
//   - 有序引擎：单消费者严格 FIFO，事件完成顺序与投递顺序一致
//   - 并发引擎：每个事件独立分发，不保证顺序
type Bus interface {
	// Post 投递事件，delay 大于零时延迟入队
	//
	// Post 不向调用者返回处理结果：处理器的成功与失败只能
	// 通过 FailureSink 与 PendingEventCount 观察。容量耗尽时
	// Post 阻塞（背压），不丢弃、不报错。
	Post(event any, delay time.Duration)

	// Register 注册订阅者的处理器描述符列表
	//
	// 同一订阅者重复注册为幂等空操作；nil 订阅者被忽略。
	Register(subscriber any, handlers ...HandlerDescriptor)

	// Deregister 移除订阅者的全部处理器
	//
	// 未注册或 nil 订阅者为空操作。注销完成后投递的事件
	// 不再触达该订阅者；已在途的事件仍会完成。
	Deregister(subscriber any)

	// PendingEventCount 返回待处理事件数（恒为非负）
	PendingEventCount() int

	// Close 关闭总线，重复调用安全
	Close() error
}

// HandlerDescriptor 处理器描述符
//
// 由调用方（或 pkg/lib/scan 扫描器）提供：Callback 绑定到
// 订阅者的某个单参数方法，EventType 为该参数的声明类型。
type HandlerDescriptor struct {
	// Callback 处理回调，恰好接受一个事件参数
	Callback func(event any) error

	// EventType 声明的参数类型
	EventType reflect.Type
}

// FailureSink 失败上报通道
//
// 接收 (上下文描述, 错误)。处理器失败、整体分发失败与背压
// 等待告警都只经由此通道暴露，永不传播给投递方，也不会
// 中止兄弟处理器或后续事件。
type FailureSink interface {
	ReportFailure(desc string, err error)
}

// ============================================================================
// 选项设置
// ============================================================================

// BusSettings 总线设置（导出以供实现使用）
type BusSettings struct {
	// Capacity 待处理/在途事件容量，非正值使用 DefaultCapacity
	Capacity int

	// Clock 时钟源，nil 时使用系统时钟
	Clock clock.Clock

	// Sink 失败上报通道，nil 时使用日志 sink
	Sink FailureSink

	// Registerer prometheus 注册器，nil 时不暴露指标
	Registerer prometheus.Registerer
}

// Opt 总线选项函数类型
type Opt func(*BusSettings)

// WithCapacity 设置待处理/在途事件容量
func WithCapacity(n int) Opt {
	return func(s *BusSettings) {
		s.Capacity = n
	}
}

// WithClock 设置时钟源（测试中注入 mock 时钟）
func WithClock(c clock.Clock) Opt {
	return func(s *BusSettings) {
		s.Clock = c
	}
}

// WithFailureSink 设置失败上报通道
func WithFailureSink(sink FailureSink) Opt {
	return func(s *BusSettings) {
		s.Sink = sink
	}
}

// WithMetricsRegisterer 设置 prometheus 注册器
func WithMetricsRegisterer(r prometheus.Registerer) Opt {
	return func(s *BusSettings) {
		s.Registerer = r
	}
}
