package registry

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/songdongsheng/EventBus/pkg/interfaces"
	"github.com/songdongsheng/EventBus/pkg/lib/log"
)

var logger = log.Logger("core/registry")

// ============================================================================
// Entry 定义
// ============================================================================

// Entry 注册表条目
//
// Subscriber 是拥有处理器的订阅者身份，只参与等值比较
// （注销时按身份移除），不会被直接调用。
type Entry struct {
	// Subscriber 订阅者身份
	Subscriber any

	// Callback 处理回调
	Callback func(event any) error

	// EventType 声明的参数类型
	EventType reflect.Type
}

// ============================================================================
// Registry 实现
// ============================================================================

// Registry 处理器注册表
//
// 快照是不可变的有序条目序列，保持插入顺序；同一订阅者
// 最多持有一组条目。变更互相排斥，但绝不阻塞已持有快照
// 引用的分发流程。
type Registry struct {
	mu       sync.Mutex // 串行化注册/注销
	snapshot atomic.Pointer[[]Entry]
	members  map[any]struct{} // 已注册订阅者身份，mu 保护
}

// New 创建空注册表
func New() *Registry {
	r := &Registry{
		members: make(map[any]struct{}),
	}
	empty := make([]Entry, 0)
	r.snapshot.Store(&empty)
	return r
}

// Register 注册订阅者的处理器描述符列表
//
// 幂等：订阅者已注册时为空操作；nil 订阅者被忽略。
// 订阅者必须是可比较类型（通常为指针），否则无法按身份
// 注销，注册被拒绝并记录告警。
func (r *Registry) Register(subscriber any, handlers []interfaces.HandlerDescriptor) {
	if subscriber == nil || len(handlers) == 0 {
		return
	}
	if t := reflect.TypeOf(subscriber); !t.Comparable() {
		logger.Warn("订阅者类型不可比较，忽略注册", "type", t.String())
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[subscriber]; ok {
		return
	}

	old := *r.snapshot.Load()
	next := make([]Entry, 0, len(old)+len(handlers))
	next = append(next, old...)
	for _, h := range handlers {
		if h.Callback == nil || h.EventType == nil {
			continue
		}
		next = append(next, Entry{
			Subscriber: subscriber,
			Callback:   h.Callback,
			EventType:  h.EventType,
		})
	}

	r.members[subscriber] = struct{}{}
	r.snapshot.Store(&next)
}

// Deregister 移除订阅者的全部条目
//
// 未注册或 nil 订阅者为空操作。从注册表视角看，移除是
// 原子的：新快照一次性替换旧快照。
func (r *Registry) Deregister(subscriber any) {
	if subscriber == nil {
		return
	}
	if !reflect.TypeOf(subscriber).Comparable() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[subscriber]; !ok {
		return
	}
	delete(r.members, subscriber)

	old := *r.snapshot.Load()
	next := make([]Entry, 0, len(old))
	for _, e := range old {
		if e.Subscriber != subscriber {
			next = append(next, e)
		}
	}
	r.snapshot.Store(&next)
}

// Snapshot 返回当前快照（无锁）
//
// 返回的切片不可修改。后续的注册/注销会发布新的切片，
// 已获取的快照不受影响。
func (r *Registry) Snapshot() []Entry {
	return *r.snapshot.Load()
}

// Len 返回当前条目数
func (r *Registry) Len() int {
	return len(*r.snapshot.Load())
}
