package eventbus

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/songdongsheng/EventBus/internal/core/dispatch"
	"github.com/songdongsheng/EventBus/internal/core/registry"
	pkgif "github.com/songdongsheng/EventBus/pkg/interfaces"
)

// ============================================================================
// Fx 集成
// ============================================================================

// Module 返回可嵌入宿主 Fx 应用的事件总线模块
//
// 向宿主容器提供 *registry.Registry 与 interfaces.Bus
// （有序引擎），并在应用停止时关闭总线。
func Module(opts ...pkgif.Opt) fx.Option {
	if opts == nil {
		opts = []pkgif.Opt{}
	}
	return fx.Options(
		fx.Supply(opts),
		registry.Module(),
		dispatch.Module(),
	)
}

// NewApp 构建独立运行的 Fx 应用
//
// 主要用于测试与示例；库的常规用法是 New 系列构造函数
// 或把 Module 嵌入宿主应用。
func NewApp(opts ...pkgif.Opt) *fx.App {
	return fx.New(
		Module(opts...),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)
}
