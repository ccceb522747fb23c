package session

import (
	"github.com/user/cinerec/internal/carousel"
	"github.com/user/cinerec/internal/model"
)

// slot 单个列表的状态
type slot struct {
	items   model.Collection
	loading bool
	alert   string
	seq     uint64 // 最近一次请求的序号
}

// State 会话状态：当前用户、两个列表槽位、代数
// 代数在每次登出/切换用户时递增，旧代数的请求结果一律丢弃
type State struct {
	id         model.Identifier
	slots      map[model.Kind]*slot
	generation uint64
}

func newState() State {
	slots := make(map[model.Kind]*slot, len(model.Kinds))
	for _, k := range model.Kinds {
		slots[k] = &slot{}
	}
	return State{slots: slots}
}

// reset 清空用户与列表，保留序号，递增代数
func (s *State) reset() {
	s.id = 0
	s.generation++
	for _, sl := range s.slots {
		sl.items, sl.loading, sl.alert = nil, false, ""
	}
}

// SlotSnapshot 列表槽位快照
type SlotSnapshot struct {
	Items    model.Collection  `json:"items"`
	Loading  bool              `json:"loading"`
	Alert    string            `json:"alert,omitempty"`
	Geometry carousel.Geometry `json:"geometry"`
}

// Snapshot 会话状态快照
type Snapshot struct {
	UserID      model.Identifier            `json:"user_id"`
	Identified  bool                        `json:"identified"`
	Collections map[model.Kind]SlotSnapshot `json:"collections"`
}
