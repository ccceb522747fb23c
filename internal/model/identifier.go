package model

import "strconv"

// MaxIdentifier 可接受的最大用户标识
const MaxIdentifier Identifier = 200000

// Identifier 用户标识（同时用于观影记录与推荐查询），零值表示未登录
type Identifier int64

// None 是否未登录
func (id Identifier) None() bool {
	return id == 0
}

// Valid 是否位于 (0, MaxIdentifier] 区间
func (id Identifier) Valid() bool {
	return id > 0 && id <= MaxIdentifier
}

func (id Identifier) String() string {
	return strconv.FormatInt(int64(id), 10)
}
