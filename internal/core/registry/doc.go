// Package registry 实现订阅者处理器注册表与类型路由
//
// 注册表采用写时复制：注册/注销在单一互斥锁下构建新快照并
// 原子发布；分发路径无锁读取快照，永远看到一致视图（变更前
// 或变更后的完整列表，绝不会是混合状态）。
//
// 路由按事件运行时类型协变匹配：声明参数类型为某接口的
// 处理器会收到所有实现该接口的事件。
package registry
