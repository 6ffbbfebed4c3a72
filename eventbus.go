package eventbus

import (
	"sync"
	"time"

	"github.com/songdongsheng/EventBus/internal/core/dispatch"
	"github.com/songdongsheng/EventBus/internal/core/registry"
	pkgif "github.com/songdongsheng/EventBus/pkg/interfaces"
	"github.com/songdongsheng/EventBus/pkg/lib/scan"
)

// ============================================================================
// 构造函数
// ============================================================================

// New 创建事件总线（默认使用有序引擎）
func New(opts ...pkgif.Opt) pkgif.Bus {
	return NewOrdered(opts...)
}

// NewOrdered 创建有序引擎总线
//
// 事件完成顺序与投递顺序一致；队列满时 Post 阻塞（背压）。
func NewOrdered(opts ...pkgif.Opt) pkgif.Bus {
	return dispatch.NewOrdered(registry.New(), opts...)
}

// NewConcurrent 创建并发引擎总线
//
// 事件之间不保证顺序；在途事件达到上限时 Post 轮询等待。
func NewConcurrent(opts ...pkgif.Opt) pkgif.Bus {
	return dispatch.NewConcurrent(registry.New(), opts...)
}

// ============================================================================
// 默认实例
// ============================================================================

var (
	defaultOnce sync.Once
	defaultBus  pkgif.Bus
)

// Default 返回进程级默认总线实例（有序引擎，默认容量）
//
// 惯例性便利入口，核心契约不依赖它；需要自定义配置时应
// 使用 New 系列构造函数。
func Default() pkgif.Bus {
	defaultOnce.Do(func() {
		defaultBus = NewOrdered()
	})
	return defaultBus
}

// Post 向默认总线投递事件
func Post(event any, delay time.Duration) {
	Default().Post(event, delay)
}

// ============================================================================
// 便利函数
// ============================================================================

// Register 扫描订阅者的处理器方法并注册到总线
//
// 等价于 b.Register(subscriber, scan.Find(subscriber)...)；
// 方法签名约定见 pkg/lib/scan。
func Register(b pkgif.Bus, subscriber any) {
	b.Register(subscriber, scan.Find(subscriber)...)
}

// HandlerFor 将 func(T) 或 func(T) error 包装为处理器描述符
//
// 用于不经过方法扫描、直接以函数注册处理器的场景。
func HandlerFor(fn any) (pkgif.HandlerDescriptor, error) {
	return scan.FromFunc(fn)
}
