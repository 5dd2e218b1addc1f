// internal/service/consumeinfo/domain/state.go
package domain

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Status 定义了消费记录的生命周期状态。
// 具体的状态集合由部署配置（transitions.yaml）决定，代码不写死业务语义。
type Status string

// Event 是作用在某个状态上的状态变更事件。
type Event string

// TransitionTable 是合法状态迁移表：current status -> event -> next status。
// 它是注入的领域配置数据，管道自身只保证"未经迁移表放行的 Update 永远到不了存储层"。
type TransitionTable map[Status]map[Event]Status

// Apply 是纯函数：给定当前状态和事件，返回迁移后的状态。
// 不在表内的 (status, event) 组合返回 ok=false，调用方必须在任何持久化动作之前短路。
func (t TransitionTable) Apply(current Status, event Event) (Status, bool) {
	events, ok := t[current]
	if !ok {
		return current, false
	}
	next, ok := events[event]
	if !ok {
		return current, false
	}
	return next, true
}

// ParseTransitionTable 从 YAML 字节解析迁移表。
// 文件格式:
//
//	Created:
//	  consume: Consumed
//	Consumed:
//	  refund: Refunded
func ParseTransitionTable(data []byte) (TransitionTable, error) {
	var raw map[Status]map[Event]Status
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse transition table")
	}
	if len(raw) == 0 {
		return nil, errors.New("transition table is empty")
	}
	return TransitionTable(raw), nil
}
