// Package eventbus 实现进程内事件总线
//
// 生产者投递任意类型的事件值；消费者按事件运行时类型注册
// 处理回调；总线把每个事件路由给所有声明参数类型与事件具体
// 类型兼容的处理器（协变匹配：声明参数为接口的处理器会收到
// 所有实现该接口的事件）。
//
// 提供两种调度引擎，共享同一契约：
//   - 有序引擎：单消费者严格 FIFO，事件完成顺序与投递顺序
//     一致；队列满时 Post 阻塞（背压）
//   - 并发引擎：每个事件独立分发，吞吐优先，不保证顺序；
//     在途事件达到上限时 Post 轮询等待
//
// # 快速开始
//
//	bus := eventbus.New() // 有序引擎
//	defer bus.Close()
//
//	stats := &OrderStats{}
//	eventbus.Register(bus, stats) // 扫描 OnXxx 处理器方法
//
//	bus.Post(OrderCreated{ID: 1}, 0)
//	bus.Post(OrderCreated{ID: 2}, 200*time.Millisecond) // 延迟投递
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(eventbus.WithCapacity(1024)),
//	    fx.Invoke(func(bus interfaces.Bus) {
//	        // ...
//	    }),
//	)
//
// 非目标：事件持久化、跨进程传输、崩溃后投递保证、重放、
// 主题字符串/通配符路由。
package eventbus
