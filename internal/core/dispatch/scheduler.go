package dispatch

import (
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// 延迟调度器
// ============================================================================

// Scheduler 延迟投递调度器
//
// 不支持取消：一旦调度，延迟投递无法撤回。延迟精度为
// 尽力而为，受定时器粒度限制，不保证亚毫秒精度。
type Scheduler struct {
	clk clock.Clock
}

// NewScheduler 创建调度器，clk 为 nil 时使用系统时钟
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clk: clk}
}

// Schedule 在 delay 之后调用 enqueue(event)，恰好一次
//
// delay 小于等于零时在调用者的 goroutine 上同步调用；
// 否则由定时器触发，不阻塞调用者。
func (s *Scheduler) Schedule(event any, delay time.Duration, enqueue func(event any)) {
	if delay <= 0 {
		enqueue(event)
		return
	}
	s.clk.AfterFunc(delay, func() {
		enqueue(event)
	})
}
