package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/songdongsheng/EventBus/internal/core/registry"
	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// backpressurePoll 背压轮询间隔
const backpressurePoll = 10 * time.Millisecond

// ErrAtCapacity 在途事件数达到上限
var ErrAtCapacity = errors.New("pending event count at capacity")

// ============================================================================
// 并发引擎
// ============================================================================

// Concurrent 并发调度引擎
//
// 没有常驻 worker：每个事件在延迟结束后派生独立的分发
// goroutine，每个匹配处理器再各自派生 goroutine。事件之间、
// 处理器之间都不保证顺序——处理器的副作用在高负载下可能
// 以乱序被观察到，这是本引擎的定义性取舍，调用方必须容忍。
//
// 在途事件达到上限时 Post 轮询等待，每轮向 FailureSink 上报
// 一次告警；等待不超时、不丢弃（刻意的停滞式限流）。
type Concurrent struct {
	id       string
	registry *registry.Registry
	sched    *Scheduler
	sink     interfaces.FailureSink
	metrics  *busMetrics
	clk      clock.Clock

	ceiling  int64
	inflight atomic.Int64
	closed   atomic.Bool
}

// 接口契约检查
var _ interfaces.Bus = (*Concurrent)(nil)

// NewConcurrent 创建并发引擎
//
// reg 为 nil 时创建私有注册表。
func NewConcurrent(reg *registry.Registry, opts ...interfaces.Opt) *Concurrent {
	if reg == nil {
		reg = registry.New()
	}
	s := applySettings(opts)

	c := &Concurrent{
		id:       uuid.NewString(),
		registry: reg,
		sched:    NewScheduler(s.Clock),
		sink:     s.Sink,
		clk:      s.Clock,
		ceiling:  int64(s.Capacity),
	}
	c.metrics = newBusMetrics("concurrent", c.id, s.Registerer)
	registerPendingGauge("concurrent", c.id, s.Registerer, func() float64 {
		return float64(c.inflight.Load())
	})

	logger.Debug("并发引擎已创建", "id", c.id, "ceiling", s.Capacity)
	return c
}

// Post 投递事件
//
// 在途事件数低于上限后立即返回；事件的实际分发在延迟结束后
// 异步进行。引擎关闭后为空操作。
func (c *Concurrent) Post(event any, delay time.Duration) {
	if c.closed.Load() {
		return
	}

	for c.inflight.Load() >= c.ceiling {
		c.metrics.backpressureWaits.Inc()
		c.sink.ReportFailure(
			fmt.Sprintf("事件 %s 等待入队（在途 %d/%d）",
				describeEvent(event), c.inflight.Load(), c.ceiling),
			ErrAtCapacity,
		)
		c.clk.Sleep(backpressurePoll)
	}

	c.inflight.Add(1)
	c.metrics.posted.Inc()
	c.sched.Schedule(event, delay, func(ev any) {
		go c.dispatch(ev)
	})
}

// Register 注册订阅者的处理器描述符列表
func (c *Concurrent) Register(subscriber any, handlers ...interfaces.HandlerDescriptor) {
	c.registry.Register(subscriber, handlers)
}

// Deregister 移除订阅者的全部处理器
func (c *Concurrent) Deregister(subscriber any) {
	c.registry.Deregister(subscriber)
}

// PendingEventCount 返回在途事件数
//
// 在途：已投递（含延迟未到期）但尚未完成全部匹配处理器的
// 事件。读取不阻塞写入方。
func (c *Concurrent) PendingEventCount() int {
	n := c.inflight.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Close 关闭引擎
//
// 之后的 Post 为空操作；已在途的事件仍会完成。重复调用安全。
func (c *Concurrent) Close() error {
	if !c.closed.Swap(true) {
		logger.Debug("并发引擎已关闭", "id", c.id)
	}
	return nil
}

// dispatch 对单个事件做独立扇出
//
// 匹配的处理器各自在独立 goroutine 中运行，失败被逐个捕获
// 上报，互不影响。全部完成后（或无匹配时立即）在途计数减一。
func (c *Concurrent) dispatch(ev any) {
	defer c.inflight.Add(-1)

	matched := registry.Match(c.registry.Snapshot(), ev)
	if len(matched) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(matched))
	for _, e := range matched {
		go func(e registry.Entry) {
			defer wg.Done()
			if err := invoke(e, ev, c.sink); err != nil {
				c.metrics.handlerErrors.Inc()
			}
		}(e)
	}
	wg.Wait()

	c.metrics.delivered.Inc()
}
