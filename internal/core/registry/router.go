package registry

import "reflect"

// ============================================================================
// 类型路由
// ============================================================================

// Match 从快照中选出与事件匹配的条目
//
// nil 事件匹配所有处理器；否则按协变规则匹配：事件的运行时
// 类型等于条目声明的类型，或可赋值给该类型（即实现了声明的
// 接口）。
//
// 线性扫描，不建二级索引：注册表规模预期为几十到几百条，
// 这是有意的取舍。
func Match(snapshot []Entry, event any) []Entry {
	if event == nil {
		return snapshot
	}

	typ := reflect.TypeOf(event)
	matched := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if typ.AssignableTo(e.EventType) {
			matched = append(matched, e)
		}
	}
	return matched
}
