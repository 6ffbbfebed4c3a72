package dispatch

import (
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/songdongsheng/EventBus/internal/core/registry"
	"github.com/songdongsheng/EventBus/pkg/interfaces"
	"github.com/songdongsheng/EventBus/pkg/lib/log"
)

var logger = log.Logger("core/dispatch")

// ============================================================================
// 失败上报
// ============================================================================

// logSink 默认失败上报通道，写入组件日志
type logSink struct{}

// ReportFailure 上报失败
func (logSink) ReportFailure(desc string, err error) {
	logger.Error("事件分发失败", "desc", desc, "err", err)
}

// describeEvent 生成事件描述，用于失败上报与背压告警
func describeEvent(event any) string {
	if event == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T(%+v)", event, event)
}

// invoke 调用单个处理器并隔离其失败
//
// 处理器返回的错误与 panic 都在此捕获并上报 sink，
// 绝不向调用方之外传播。返回值仅用于有序引擎聚合
// 整体分发错误。
func invoke(e registry.Entry, event any, sink interfaces.FailureSink) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("处理器 panic: %v", rec)
		}
		if err != nil {
			sink.ReportFailure(
				fmt.Sprintf("处理器 %T 处理事件 %s", e.Subscriber, describeEvent(event)),
				err,
			)
		}
	}()
	return e.Callback(event)
}

// ============================================================================
// 设置
// ============================================================================

// applySettings 应用选项并填充默认值
func applySettings(opts []interfaces.Opt) *interfaces.BusSettings {
	s := &interfaces.BusSettings{
		Capacity: interfaces.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Capacity <= 0 {
		s.Capacity = interfaces.DefaultCapacity
	}
	if s.Clock == nil {
		s.Clock = clock.New()
	}
	if s.Sink == nil {
		s.Sink = logSink{}
	}
	return s
}
