// Package dispatch 实现两种事件调度引擎
//
// 有序引擎（Ordered）：
//   - 单一后台 worker 从有界 FIFO 队列取事件
//   - 对每个事件并行调用全部匹配处理器，等待全部完成后才取
//     下一个事件，保证事件完成顺序与投递顺序一致
//   - 队列满时 Post 阻塞（背压）
//
// 并发引擎（Concurrent）：
//   - 没有常驻 worker，每个事件派生独立的分发 goroutine
//   - 事件之间、处理器之间都不保证顺序
//   - 在途事件数达到上限时 Post 轮询等待并逐轮上报告警，
//     不超时、不丢弃
//
// 两种引擎共用延迟调度器（Scheduler）与按类型路由的注册表
// （internal/core/registry）。处理器的错误与 panic 被逐个捕获
// 并上报 FailureSink，绝不传播给投递方，也不会中止兄弟处理器
// 或后续事件。
package dispatch
