package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind 列表类型
type Kind string

const (
	KindWatched     Kind = "watched"
	KindRecommended Kind = "recommended"
)

// Kinds 按展示顺序列出所有列表类型
var Kinds = []Kind{KindWatched, KindRecommended}

// ParseKind 解析路径参数中的列表类型
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindWatched:
		return KindWatched, true
	case KindRecommended:
		return KindRecommended, true
	default:
		return "", false
	}
}

// Score 评分：观影记录为用户评分，推荐为预测分，由 kind 区分
type Score struct {
	kind  Kind
	value float64
}

// RatingScore 用户评分
func RatingScore(rating float64) Score {
	return Score{kind: KindWatched, value: rating}
}

// PredictedScore 预测评分
func PredictedScore(predicted float64) Score {
	return Score{kind: KindRecommended, value: predicted}
}

// Kind 评分类型
func (s Score) Kind() Kind {
	return s.kind
}

// Value 原始分值
func (s Score) Value() float64 {
	return s.value
}

// Label 卡片展示文本：用户评分原样显示，预测分保留两位小数
func (s Score) Label() string {
	switch s.kind {
	case KindWatched:
		return "★ " + strconv.FormatFloat(s.value, 'f', -1, 64)
	case KindRecommended:
		return fmt.Sprintf("Predicted ★ %.2f", s.value)
	default:
		return ""
	}
}

// MarshalJSON 输出 {"kind","value","label"}
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  Kind    `json:"kind"`
		Value float64 `json:"value"`
		Label string  `json:"label"`
	}{s.kind, s.value, s.Label()})
}

// Item 观影记录或推荐条目（未补全海报）
type Item struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Score   Score  `json:"score"`
}

// EnrichedItem 补全海报后的条目，Poster 为空表示无图
type EnrichedItem struct {
	Item
	Poster string `json:"poster,omitempty"`
}

// HasPoster 是否有海报
func (e EnrichedItem) HasPoster() bool {
	return e.Poster != ""
}

// Collection 有序的条目列表（一行轮播）
type Collection []EnrichedItem
