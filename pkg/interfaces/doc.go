// Package interfaces 定义 EventBus 公共接口
//
// 核心实现位于 internal/core 下，对外只暴露本包中的接口与
// 选项类型。调用方依赖接口而非具体引擎，两种调度引擎
// （有序/并发）可以互换。
package interfaces
