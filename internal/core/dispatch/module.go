package dispatch

import (
	"context"

	"go.uber.org/fx"

	"github.com/songdongsheng/EventBus/internal/core/registry"
	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Registry *registry.Registry
	Opts     []interfaces.Opt `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus interfaces.Bus
}

// Module 返回 Fx 模块
//
// 提供有序引擎作为默认 Bus，并注册生命周期钩子在应用
// 停止时关闭引擎。
func Module() fx.Option {
	return fx.Module("dispatch",
		fx.Provide(ProvideBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideBus 提供 Bus 实例
func ProvideBus(p Params) Result {
	return Result{
		Bus: NewOrdered(p.Registry, p.Opts...),
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC  fx.Lifecycle
	Bus interfaces.Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Bus.Close()
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "dispatch"
	// Description 模块描述
	Description = "事件调度模块，提供有序与并发两种分发引擎"
)
