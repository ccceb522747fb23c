package carousel

import "sync"

// Measurer 测量首张卡片的渲染宽度，没有卡片时 ok 为 false
type Measurer interface {
	CardWidth() (width float64, ok bool)
}

// Viewport 可测量且会通知尺寸变化的视口
type Viewport interface {
	Measurer
	// OnResize 注册尺寸变化回调，返回的 cancel 用于取消订阅
	OnResize(fn func()) (cancel func())
}

// ReportedViewport 由浏览器上报测量结果驱动的 Viewport
type ReportedViewport struct {
	mu        sync.Mutex
	cardWidth float64
	measured  bool
	nextID    int
	subs      map[int]func()
}

var _ Viewport = (*ReportedViewport)(nil)

// NewReportedViewport 创建尚未测量的视口
func NewReportedViewport() *ReportedViewport {
	return &ReportedViewport{subs: make(map[int]func())}
}

func (v *ReportedViewport) CardWidth() (float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cardWidth, v.measured
}

func (v *ReportedViewport) OnResize(fn func()) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Report 记录一次测量并通知订阅者；cardWidth <= 0 表示当前没有卡片
func (v *ReportedViewport) Report(cardWidth float64) {
	v.mu.Lock()
	if cardWidth > 0 {
		v.cardWidth, v.measured = cardWidth, true
	} else {
		v.cardWidth, v.measured = 0, false
	}
	fns := make([]func(), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	// 回调在锁外执行，允许回调内再次测量
	for _, fn := range fns {
		fn()
	}
}

// Subscribers 当前订阅数
func (v *ReportedViewport) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
