package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songdongsheng/EventBus/pkg/interfaces"
)

// 测试类型层次：Dog 实现 Animal
type Animal interface {
	Sound() string
}

type Dog struct {
	Name string
}

func (Dog) Sound() string { return "woof" }

type Cat struct{}

func (Cat) Sound() string { return "meow" }

// ============================================================================
// 路由测试
// ============================================================================

// TestMatch_ExactType 测试精确类型匹配
func TestMatch_ExactType(t *testing.T) {
	r := New()
	sub := &testSubscriber{name: "a"}
	r.Register(sub, []interfaces.HandlerDescriptor{
		descriptorFor(reflect.TypeOf("")),
		descriptorFor(reflect.TypeOf(0)),
	})

	matched := Match(r.Snapshot(), "hello")

	require.Len(t, matched, 1)
	assert.Equal(t, reflect.TypeOf(""), matched[0].EventType)
}

// TestMatch_Covariant 测试协变匹配：接口处理器收到实现类型的事件
func TestMatch_Covariant(t *testing.T) {
	r := New()
	sub := &testSubscriber{name: "a"}
	animalType := reflect.TypeOf((*Animal)(nil)).Elem()
	r.Register(sub, []interfaces.HandlerDescriptor{descriptorFor(animalType)})

	matched := Match(r.Snapshot(), Dog{Name: "rex"})
	require.Len(t, matched, 1)

	matched = Match(r.Snapshot(), Cat{})
	require.Len(t, matched, 1)

	// 未实现 Animal 的类型不匹配
	matched = Match(r.Snapshot(), "not an animal")
	assert.Empty(t, matched)
}

// TestMatch_CovariantAndExact 测试同一事件同时命中接口与精确类型处理器
func TestMatch_CovariantAndExact(t *testing.T) {
	r := New()
	sub := &testSubscriber{name: "a"}
	animalType := reflect.TypeOf((*Animal)(nil)).Elem()
	r.Register(sub, []interfaces.HandlerDescriptor{
		descriptorFor(animalType),
		descriptorFor(reflect.TypeOf(Dog{})),
	})

	matched := Match(r.Snapshot(), Dog{})
	assert.Len(t, matched, 2)

	matched = Match(r.Snapshot(), Cat{})
	assert.Len(t, matched, 1)
}

// TestMatch_NilEvent 测试 nil 事件匹配所有处理器
func TestMatch_NilEvent(t *testing.T) {
	r := New()
	sub := &testSubscriber{name: "a"}
	r.Register(sub, []interfaces.HandlerDescriptor{
		descriptorFor(reflect.TypeOf("")),
		descriptorFor(reflect.TypeOf(0)),
		descriptorFor(reflect.TypeOf(Dog{})),
	})

	matched := Match(r.Snapshot(), nil)
	assert.Len(t, matched, 3)
}

// TestMatch_EmptySnapshot 测试空注册表
func TestMatch_EmptySnapshot(t *testing.T) {
	r := New()
	assert.Empty(t, Match(r.Snapshot(), "anything"))
}

// TestMatch_PreservesOrder 测试匹配结果保持插入顺序
func TestMatch_PreservesOrder(t *testing.T) {
	r := New()
	a := &testSubscriber{name: "a"}
	b := &testSubscriber{name: "b"}
	r.Register(a, []interfaces.HandlerDescriptor{descriptorFor(reflect.TypeOf(""))})
	r.Register(b, []interfaces.HandlerDescriptor{descriptorFor(reflect.TypeOf(""))})

	matched := Match(r.Snapshot(), "x")

	require.Len(t, matched, 2)
	assert.Same(t, a, matched[0].Subscriber)
	assert.Same(t, b, matched[1].Subscriber)
}
