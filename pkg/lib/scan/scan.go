// Package scan 实现订阅者处理器方法发现
//
// 本包充当外部协作者：按方法签名约定扫描订阅者，产出处理器
// 描述符列表供 Bus.Register 使用。核心调度引擎不依赖本包，
// 调用方也可以完全绕开它，手工构造描述符。
//
// 约定：导出方法名以 On 开头，恰好一个参数，返回值为空或
// 单个 error。例如：
//
//	func (s *OrderStats) OnOrderCreated(evt OrderCreated) error
package scan

import (
	"errors"
	"reflect"
	"strings"

	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// methodPrefix 处理器方法名前缀
const methodPrefix = "On"

var (
	// ErrNotFunc 参数不是函数
	ErrNotFunc = errors.New("handler is not a func")
	// ErrBadSignature 函数签名不符合约定
	ErrBadSignature = errors.New("handler must take exactly one parameter and return nothing or error")
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Find 扫描 subscriber 的方法并返回处理器描述符列表
//
// subscriber 为 nil 时返回 nil；不满足约定的方法被静默跳过。
// 描述符的 EventType 为方法参数的声明类型，回调绑定到该
// 订阅者实例。
func Find(subscriber any) []interfaces.HandlerDescriptor {
	if subscriber == nil {
		return nil
	}

	v := reflect.ValueOf(subscriber)
	t := v.Type()

	var out []interfaces.HandlerDescriptor
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, methodPrefix) || len(m.Name) == len(methodPrefix) {
			continue
		}
		// 接收者之外恰好一个参数
		if m.Type.NumIn() != 2 {
			continue
		}
		if !validReturns(m.Type) {
			continue
		}
		out = append(out, bind(v.Method(i), m.Type.In(1), m.Type.NumOut() == 1))
	}
	return out
}

// FromFunc 将任意 func(T) 或 func(T) error 包装为处理器描述符
//
// EventType 取自函数的参数声明类型。
func FromFunc(fn any) (interfaces.HandlerDescriptor, error) {
	if fn == nil {
		return interfaces.HandlerDescriptor{}, ErrNotFunc
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return interfaces.HandlerDescriptor{}, ErrNotFunc
	}
	if t.NumIn() != 1 || t.IsVariadic() || !validReturns(t) {
		return interfaces.HandlerDescriptor{}, ErrBadSignature
	}

	return bind(v, t.In(0), t.NumOut() == 1), nil
}

// validReturns 校验返回值：空或单个 error
func validReturns(t reflect.Type) bool {
	switch t.NumOut() {
	case 0:
		return true
	case 1:
		return t.Out(0) == errType
	default:
		return false
	}
}

// bind 将函数值包装为描述符
//
// 事件为 nil 时以参数类型的零值调用（nil 事件匹配所有
// 处理器，见 internal/core/registry 的路由规则）。
func bind(fn reflect.Value, eventType reflect.Type, returnsErr bool) interfaces.HandlerDescriptor {
	return interfaces.HandlerDescriptor{
		EventType: eventType,
		Callback: func(event any) error {
			var arg reflect.Value
			if event == nil {
				arg = reflect.Zero(eventType)
			} else {
				arg = reflect.ValueOf(event)
			}
			rets := fn.Call([]reflect.Value{arg})
			if returnsErr && !rets[0].IsNil() {
				return rets[0].Interface().(error)
			}
			return nil
		},
	}
}
