package eventbus

import "errors"

// 公共错误定义
var (
	// ErrUnknownMode 未知引擎模式
	ErrUnknownMode = errors.New("unknown engine mode")
)
