package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/songdongsheng/EventBus/internal/core/registry"
	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// ============================================================================
// 有序引擎
// ============================================================================

// Ordered 有序调度引擎
//
// 构造时启动恰好一个后台 worker：从有界 FIFO 队列取事件，
// 并行调用该事件的全部匹配处理器并等待它们全部完成，再取
// 下一个事件。串行化成本因此被限定在"当前事件最慢的处理器"，
// 而非整条事件流最慢的处理器。
type Ordered struct {
	id       string
	registry *registry.Registry
	sched    *Scheduler
	sink     interfaces.FailureSink
	metrics  *busMetrics

	queue chan any
	done  chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// 接口契约检查
var _ interfaces.Bus = (*Ordered)(nil)

// NewOrdered 创建有序引擎并启动分发 worker
//
// reg 为 nil 时创建私有注册表。
func NewOrdered(reg *registry.Registry, opts ...interfaces.Opt) *Ordered {
	if reg == nil {
		reg = registry.New()
	}
	s := applySettings(opts)

	o := &Ordered{
		id:       uuid.NewString(),
		registry: reg,
		sched:    NewScheduler(s.Clock),
		sink:     s.Sink,
		queue:    make(chan any, s.Capacity),
		done:     make(chan struct{}),
	}
	o.metrics = newBusMetrics("ordered", o.id, s.Registerer)
	registerPendingGauge("ordered", o.id, s.Registerer, func() float64 {
		return float64(len(o.queue))
	})

	o.wg.Add(1)
	go o.loop()

	logger.Debug("有序引擎已启动", "id", o.id, "capacity", s.Capacity)
	return o
}

// Post 投递事件
//
// 延迟结束后事件进入有界队列；队列满时阻塞直到有空位
// （背压）。引擎关闭后为空操作。
func (o *Ordered) Post(event any, delay time.Duration) {
	select {
	case <-o.done:
		return
	default:
	}

	o.metrics.posted.Inc()
	o.sched.Schedule(event, delay, func(ev any) {
		select {
		case o.queue <- ev:
		case <-o.done:
		}
	})
}

// Register 注册订阅者的处理器描述符列表
func (o *Ordered) Register(subscriber any, handlers ...interfaces.HandlerDescriptor) {
	o.registry.Register(subscriber, handlers)
}

// Deregister 移除订阅者的全部处理器
func (o *Ordered) Deregister(subscriber any) {
	o.registry.Deregister(subscriber)
}

// PendingEventCount 返回当前队列深度
//
// 不含延迟未到期的事件；并发引擎则在延迟开始前就计数。
func (o *Ordered) PendingEventCount() int {
	return len(o.queue)
}

// Close 关闭引擎
//
// 停止接收新事件，唤醒阻塞中的 worker 与 Post 调用，
// 等待 worker 退出。重复调用安全。
func (o *Ordered) Close() error {
	o.closeOnce.Do(func() {
		close(o.done)
		o.wg.Wait()
		logger.Debug("有序引擎已关闭", "id", o.id)
	})
	return nil
}

// loop 分发 worker 循环
//
// 整体分发失败在此上报后继续处理下一个事件，引擎永不因
// 处理器错误而终止。
func (o *Ordered) loop() {
	defer o.wg.Done()

	for {
		select {
		case <-o.done:
			return
		case ev := <-o.queue:
			if err := o.dispatch(ev); err != nil {
				o.sink.ReportFailure(
					fmt.Sprintf("事件 %s 整体分发", describeEvent(ev)),
					err,
				)
			}
		}
	}
}

// dispatch 对单个事件做处理器扇出并等待全部完成
//
// 单个处理器的失败已在 invoke 中逐个上报；此处聚合为
// 整体分发错误返回给 worker 循环。
func (o *Ordered) dispatch(ev any) error {
	matched := registry.Match(o.registry.Snapshot(), ev)
	if len(matched) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		combined error
		wg       sync.WaitGroup
	)
	wg.Add(len(matched))
	for _, e := range matched {
		go func(e registry.Entry) {
			defer wg.Done()
			if err := invoke(e, ev, o.sink); err != nil {
				o.metrics.handlerErrors.Inc()
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
		}(e)
	}
	wg.Wait()

	o.metrics.delivered.Inc()
	return combined
}
