package carousel

import (
	"math"
	"sync"
)

// Geometry 某一时刻的轮播几何状态
type Geometry struct {
	Visible       int     `json:"visible_count"`
	Gap           float64 `json:"gap"`
	CardWidth     float64 `json:"card_width"`
	ScrollAmount  int     `json:"scroll_amount"`
	ViewportWidth int     `json:"viewport_width"`
	Offset        float64 `json:"offset"`
}

// Surface 一行轮播的滚动几何
// 以下任一变化都会重新计算：条目数、可见数、视口尺寸
type Surface struct {
	mu sync.Mutex

	visible int
	gap     float64
	items   int

	vp     Viewport
	cancel func()

	cardWidth     float64
	scrollAmount  int
	viewportWidth int
	offset        float64
}

// NewSurface 创建轮播，visible <= 0 时使用默认值
func NewSurface(visible int, gap float64) *Surface {
	if visible <= 0 {
		visible = DefaultVisible
	}
	if gap < 0 {
		gap = DefaultGap
	}
	return &Surface{visible: visible, gap: gap}
}

// Mount 绑定视口并订阅尺寸变化；已绑定时先释放旧订阅
func (s *Surface) Mount(vp Viewport) {
	s.Unmount()
	cancel := vp.OnResize(s.Remeasure)

	s.mu.Lock()
	s.vp, s.cancel = vp, cancel
	s.mu.Unlock()

	s.Remeasure()
}

// Unmount 释放尺寸订阅，可重复调用
func (s *Surface) Unmount() {
	s.mu.Lock()
	cancel := s.cancel
	s.vp, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Mounted 是否已绑定视口
func (s *Surface) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp != nil
}

// SetVisibleCount 修改可见卡片数
func (s *Surface) SetVisibleCount(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.visible = n
	s.mu.Unlock()
	s.Remeasure()
}

// SetItemCount 列表被替换时调用；新轨道从头开始滚动
func (s *Surface) SetItemCount(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.items = n
	s.offset = 0
	s.mu.Unlock()
	s.Remeasure()
}

// Remeasure 重新测量卡片宽度并计算滚动距离；视口中没有卡片时保持原值
func (s *Surface) Remeasure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vp == nil {
		return
	}
	width, ok := s.vp.CardWidth()
	if !ok || width <= 0 {
		return
	}
	s.cardWidth = width
	s.scrollAmount = ScrollAmount(width, s.visible, s.gap)
	s.viewportWidth = s.scrollAmount
	s.offset = s.clamp(s.offset)
}

// ScrollAmount 单次翻页距离，未测量时为 0
func (s *Surface) ScrollAmount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollAmount
}

// ViewportWidth 视口宽度，恰好容纳 visible 张卡片
func (s *Surface) ViewportWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewportWidth
}

// Offset 当前滚动位置
func (s *Surface) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Next 向后滚动一页，返回滚动增量（scrollBy 的参数）
func (s *Surface) Next() int {
	return s.scrollBy(1)
}

// Prev 向前滚动一页，返回滚动增量
func (s *Surface) Prev() int {
	return s.scrollBy(-1)
}

func (s *Surface) scrollBy(dir int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delta := dir * s.scrollAmount
	s.offset = s.clamp(s.offset + float64(delta))
	return delta
}

// Geometry 当前几何状态快照
func (s *Surface) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Geometry{
		Visible:       s.visible,
		Gap:           s.gap,
		CardWidth:     s.cardWidth,
		ScrollAmount:  s.scrollAmount,
		ViewportWidth: s.viewportWidth,
		Offset:        s.offset,
	}
}

// clamp 与浏览器滚动容器一致：[0, trackWidth-viewportWidth]
func (s *Surface) clamp(offset float64) float64 {
	limit := math.Max(0, TrackWidth(s.cardWidth, s.items, s.gap)-float64(s.viewportWidth))
	return math.Min(math.Max(offset, 0), limit)
}
