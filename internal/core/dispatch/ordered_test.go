package dispatch

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// ============================================================================
// 测试辅助
// ============================================================================

// recordSink 记录失败上报的 sink
type recordSink struct {
	mu    sync.Mutex
	descs []string
	errs  []error
}

func (s *recordSink) ReportFailure(desc string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descs = append(s.descs, desc)
	s.errs = append(s.errs, err)
}

// countPrefix 统计描述前缀出现次数
func (s *recordSink) countPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.descs {
		if strings.HasPrefix(d, prefix) {
			n++
		}
	}
	return n
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.descs)
}

// errors 返回已上报错误的副本
func (s *recordSink) errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

// stringDescriptor 构造接收 string 事件的描述符
func stringDescriptor(fn func(string) error) interfaces.HandlerDescriptor {
	return interfaces.HandlerDescriptor{
		EventType: reflect.TypeOf(""),
		Callback: func(ev any) error {
			return fn(ev.(string))
		},
	}
}

// waitUntil 轮询等待条件成立
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("条件在超时前未满足")
}

type orderedSubscriber struct {
	name string
}

// ============================================================================
// 有序引擎测试
// ============================================================================

// TestOrdered_FIFOCompletionOrder 测试事件完成顺序与投递顺序一致
//
// 容量 2 的有序总线，依次投递 "a"、"b"、"c"：处理器按此顺序
// 收到事件，且每个事件完成后才开始下一个。
func TestOrdered_FIFOCompletionOrder(t *testing.T) {
	o := NewOrdered(nil, interfaces.WithCapacity(2))
	defer o.Close()

	var (
		mu       sync.Mutex
		received []string
	)
	sub := &orderedSubscriber{name: "A"}
	o.Register(sub, stringDescriptor(func(s string) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, s)
		return nil
	}))

	o.Post("a", 0)
	o.Post("b", 0)
	o.Post("c", 0)

	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	for i, want := range []string{"a", "b", "c"} {
		if received[i] != want {
			t.Errorf("received[%d] = %q, want %q", i, received[i], want)
		}
	}
	if n := o.PendingEventCount(); n != 0 {
		t.Errorf("PendingEventCount() = %d, want 0", n)
	}
}

// TestOrdered_HandlerErrorIsolation 测试错误处理器不影响同类事件的其他处理器
//
// 订阅者 C 的处理器每次都失败；投递 5 个事件后 sink 收到 5 次
// 处理器失败上报，同类型的订阅者 D 仍成功收到全部 5 个事件。
func TestOrdered_HandlerErrorIsolation(t *testing.T) {
	sink := &recordSink{}
	o := NewOrdered(nil, interfaces.WithFailureSink(sink))
	defer o.Close()

	boom := errors.New("boom")
	subC := &orderedSubscriber{name: "C"}
	o.Register(subC, stringDescriptor(func(string) error {
		return boom
	}))

	var (
		mu     sync.Mutex
		countD int
	)
	subD := &orderedSubscriber{name: "D"}
	o.Register(subD, stringDescriptor(func(string) error {
		mu.Lock()
		defer mu.Unlock()
		countD++
		return nil
	}))

	for i := 0; i < 5; i++ {
		o.Post("evt", 0)
	}

	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return countD == 5
	})
	waitUntil(t, time.Second, func() bool {
		return sink.countPrefix("处理器") == 5
	})

	// 每个事件还会聚合为一次整体分发失败上报
	waitUntil(t, time.Second, func() bool {
		return sink.countPrefix("事件") == 5
	})
}

// TestOrdered_PanicIsolation 测试处理器 panic 不影响后续事件
func TestOrdered_PanicIsolation(t *testing.T) {
	sink := &recordSink{}
	o := NewOrdered(nil, interfaces.WithFailureSink(sink))
	defer o.Close()

	var (
		mu       sync.Mutex
		received int
	)
	sub := &orderedSubscriber{name: "P"}
	o.Register(sub, stringDescriptor(func(s string) error {
		if s == "bad" {
			panic("handler exploded")
		}
		mu.Lock()
		defer mu.Unlock()
		received++
		return nil
	}))

	o.Post("bad", 0)
	o.Post("good", 0)

	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received == 1
	})
	if sink.count() == 0 {
		t.Error("panic 未被上报至 sink")
	}
}

// TestOrdered_Backpressure 测试队列满时 Post 阻塞
func TestOrdered_Backpressure(t *testing.T) {
	o := NewOrdered(nil, interfaces.WithCapacity(1))
	defer o.Close()

	started := make(chan struct{}, 3)
	release := make(chan struct{})
	var (
		mu        sync.Mutex
		delivered int
	)
	sub := &orderedSubscriber{name: "B"}
	o.Register(sub, stringDescriptor(func(string) error {
		started <- struct{}{}
		<-release
		mu.Lock()
		defer mu.Unlock()
		delivered++
		return nil
	}))

	o.Post("e1", 0)
	<-started // worker 已取走 e1，队列空

	o.Post("e2", 0) // 占满队列

	var (
		flagMu sync.Mutex
		posted bool
	)
	go func() {
		o.Post("e3", 0) // 队列满，阻塞
		flagMu.Lock()
		posted = true
		flagMu.Unlock()
	}()

	time.Sleep(50 * time.Millisecond)
	flagMu.Lock()
	if posted {
		flagMu.Unlock()
		t.Fatal("队列满时 Post 未阻塞")
	}
	flagMu.Unlock()

	close(release)

	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 3
	})
	waitUntil(t, time.Second, func() bool {
		flagMu.Lock()
		defer flagMu.Unlock()
		return posted
	})
}

// TestOrdered_DeregisterCutoff 测试注销后投递的事件不再触达订阅者
func TestOrdered_DeregisterCutoff(t *testing.T) {
	o := NewOrdered(nil)
	defer o.Close()

	var (
		mu       sync.Mutex
		received int
	)
	sub := &orderedSubscriber{name: "X"}
	o.Register(sub, stringDescriptor(func(string) error {
		mu.Lock()
		defer mu.Unlock()
		received++
		return nil
	}))

	o.Post("before", 0)
	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received == 1
	})

	o.Deregister(sub)
	o.Post("after", 0)

	waitUntil(t, time.Second, func() bool {
		return o.PendingEventCount() == 0
	})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if received != 1 {
		t.Errorf("注销后仍收到事件，received = %d", received)
	}
}

// TestOrdered_ReregisterNoDuplicate 测试重复注册不产生重复调用
func TestOrdered_ReregisterNoDuplicate(t *testing.T) {
	o := NewOrdered(nil)
	defer o.Close()

	var (
		mu       sync.Mutex
		received int
	)
	sub := &orderedSubscriber{name: "R"}
	desc := stringDescriptor(func(string) error {
		mu.Lock()
		defer mu.Unlock()
		received++
		return nil
	})
	o.Register(sub, desc)
	o.Register(sub, desc) // 幂等空操作

	o.Post("once", 0)

	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received >= 1
	})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if received != 1 {
		t.Errorf("received = %d, want 1", received)
	}
}

// TestOrdered_ParallelFanout 测试单事件的处理器并行扇出
//
// 两个处理器都阻塞等待对方开始，只有并行调用才能完成。
func TestOrdered_ParallelFanout(t *testing.T) {
	o := NewOrdered(nil)
	defer o.Close()

	var barrier sync.WaitGroup
	barrier.Add(2)
	done := make(chan struct{}, 2)

	handler := func(string) error {
		barrier.Done()
		barrier.Wait() // 等另一个处理器也开始
		done <- struct{}{}
		return nil
	}
	o.Register(&orderedSubscriber{name: "f1"}, stringDescriptor(handler))
	o.Register(&orderedSubscriber{name: "f2"}, stringDescriptor(handler))

	o.Post("evt", 0)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("处理器未并行执行")
		}
	}
}

// TestOrdered_CloseIdempotent 测试重复关闭安全、关闭后 Post 为空操作
func TestOrdered_CloseIdempotent(t *testing.T) {
	o := NewOrdered(nil)

	var (
		mu       sync.Mutex
		received int
	)
	o.Register(&orderedSubscriber{name: "c"}, stringDescriptor(func(string) error {
		mu.Lock()
		defer mu.Unlock()
		received++
		return nil
	}))

	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	o.Post("late", 0)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if received != 0 {
		t.Errorf("关闭后仍分发了事件，received = %d", received)
	}
}
