package eventbus

import (
	"fmt"

	pkgif "github.com/songdongsheng/EventBus/pkg/interfaces"
)

// 引擎模式
const (
	// ModeOrdered 有序引擎
	ModeOrdered = "ordered"
	// ModeConcurrent 并发引擎
	ModeConcurrent = "concurrent"
)

// UserConfig 用户配置结构
//
// 这是面向用户的简化配置结构，可以从 JSON 文件加载。
//
// 注意：配置文件的读取和环境变量的处理应由应用层负责，
// 库本身不负责 I/O 操作。示例用法：
//
//	data, _ := os.ReadFile("config.json")
//	var cfg eventbus.UserConfig
//	json.Unmarshal(data, &cfg)
//	bus, _ := eventbus.NewFromConfig(cfg)
type UserConfig struct {
	// Mode 引擎模式
	// 可选值: ordered, concurrent（空值表示 ordered）
	Mode string `json:"mode,omitempty"`

	// Capacity 待处理/在途事件容量
	// 非正值使用默认容量（1,048,576）
	Capacity int `json:"capacity,omitempty"`
}

// ToOptions 转换为选项列表
func (c UserConfig) ToOptions() []pkgif.Opt {
	var opts []pkgif.Opt
	if c.Capacity > 0 {
		opts = append(opts, pkgif.WithCapacity(c.Capacity))
	}
	return opts
}

// NewFromConfig 按用户配置构建总线
func NewFromConfig(cfg UserConfig) (pkgif.Bus, error) {
	switch cfg.Mode {
	case "", ModeOrdered:
		return NewOrdered(cfg.ToOptions()...), nil
	case ModeConcurrent:
		return NewConcurrent(cfg.ToOptions()...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
