// Package session 浏览器会话：当前用户、列表拉取调度与轮播组合
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/user/cinerec/internal/carousel"
	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/metrics"
	"github.com/user/cinerec/internal/model"
	"github.com/user/cinerec/internal/service"
)

// ErrAnonymous 未登录时执行需要用户的操作
var ErrAnonymous = errors.New("no active identifier")

// Gate 校验用户输入
type Gate interface {
	Parse(raw string) (model.Identifier, error)
}

// Fetcher 拉取列表
type Fetcher interface {
	Fetch(ctx context.Context, id model.Identifier, kind model.Kind, tracker service.Tracker) (model.Collection, error)
}

var alerts = map[model.Kind]string{
	model.KindWatched:     "Could not load your watched movies.",
	model.KindRecommended: "Could not load recommendations.",
}

// Controller 单个浏览器会话的控制器
type Controller struct {
	mu    sync.Mutex
	state State

	gate      Gate
	fetcher   Fetcher
	surfaces  map[model.Kind]*carousel.Surface
	viewports map[model.Kind]*carousel.ReportedViewport

	wg  sync.WaitGroup
	log zerolog.Logger
}

// NewController 创建控制器，每个列表一个轮播
func NewController(gate Gate, fetcher Fetcher, visible int, gap float64) *Controller {
	c := &Controller{
		state:     newState(),
		gate:      gate,
		fetcher:   fetcher,
		surfaces:  make(map[model.Kind]*carousel.Surface, len(model.Kinds)),
		viewports: make(map[model.Kind]*carousel.ReportedViewport, len(model.Kinds)),
		log:       logging.Component("session"),
	}
	for _, k := range model.Kinds {
		c.surfaces[k] = carousel.NewSurface(visible, gap)
		c.viewports[k] = carousel.NewReportedViewport()
	}
	return c
}

// Identify 校验输入并登录，随后在后台拉取观影记录
// 校验失败时状态不变；已登录时视为切换用户
func (c *Controller) Identify(ctx context.Context, raw string) (model.Identifier, error) {
	id, err := c.gate.Parse(raw)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if !c.state.id.None() {
		c.state.reset()
	}
	c.state.id = id
	c.mu.Unlock()

	for _, k := range model.Kinds {
		c.surfaces[k].SetItemCount(0)
		c.surfaces[k].Mount(c.viewports[k])
	}

	c.log.Info().Stringer("user", id).Msg("用户已登录")
	c.start(ctx, model.KindWatched)
	return id, nil
}

// RequestRecommendations 拉取推荐，可重复调用，以最后一次请求为准
func (c *Controller) RequestRecommendations(ctx context.Context) error {
	c.mu.Lock()
	anonymous := c.state.id.None()
	c.mu.Unlock()
	if anonymous {
		return ErrAnonymous
	}
	c.start(ctx, model.KindRecommended)
	return nil
}

// Logout 清空用户与列表，进行中的请求结果将被丢弃
func (c *Controller) Logout() {
	c.mu.Lock()
	id := c.state.id
	c.state.reset()
	c.mu.Unlock()

	for _, k := range model.Kinds {
		c.surfaces[k].Unmount()
		c.surfaces[k].SetItemCount(0)
	}
	if !id.None() {
		c.log.Info().Stringer("user", id).Msg("用户已登出")
	}
}

// Identifier 当前用户，未登录为 0
func (c *Controller) Identifier() model.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.id
}

// Snapshot 当前状态快照
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		UserID:      c.state.id,
		Identified:  !c.state.id.None(),
		Collections: make(map[model.Kind]SlotSnapshot, len(c.state.slots)),
	}
	for k, sl := range c.state.slots {
		snap.Collections[k] = SlotSnapshot{
			Items:    sl.items,
			Loading:  sl.loading,
			Alert:    sl.alert,
			Geometry: c.surfaces[k].Geometry(),
		}
	}
	return snap
}

// ClearAlert 取出并清除提示，每条提示只展示一次
func (c *Controller) ClearAlert(kind model.Kind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	sl, ok := c.state.slots[kind]
	if !ok {
		return ""
	}
	alert := sl.alert
	sl.alert = ""
	return alert
}

// View 渲染指定列表的轮播视图，同时消费待展示的提示
func (c *Controller) View(kind model.Kind) carousel.View {
	c.mu.Lock()
	sl, ok := c.state.slots[kind]
	if !ok {
		c.mu.Unlock()
		return carousel.Render(kind, nil, false, carousel.Geometry{}, "")
	}
	items, loading, alert := sl.items, sl.loading, sl.alert
	sl.alert = ""
	c.mu.Unlock()

	return carousel.Render(kind, items, loading, c.surfaces[kind].Geometry(), alert)
}

// Surface 指定列表的轮播
func (c *Controller) Surface(kind model.Kind) *carousel.Surface {
	return c.surfaces[kind]
}

// Viewport 指定列表的视口，浏览器测量结果通过它上报
func (c *Controller) Viewport(kind model.Kind) *carousel.ReportedViewport {
	return c.viewports[kind]
}

// Wait 等待所有后台拉取结束
func (c *Controller) Wait() {
	c.wg.Wait()
}

// start 发放新票据并在后台拉取；票据发放时即标记 loading
func (c *Controller) start(ctx context.Context, kind model.Kind) {
	c.mu.Lock()
	sl := c.state.slots[kind]
	sl.seq++
	sl.loading = true
	t := &ticket{c: c, kind: kind, generation: c.state.generation, seq: sl.seq, id: c.state.id}
	c.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("kind", string(kind)).Msg("后台拉取发生恐慌")
			}
		}()
		_, _ = c.fetcher.Fetch(bg, t.id, kind, t)
	}()
}

// ticket 标识一次拉取；只有仍是最新票据时结果才会落地
type ticket struct {
	c          *Controller
	kind       model.Kind
	generation uint64
	seq        uint64
	id         model.Identifier
}

func (t *ticket) Started() {
	t.c.log.Debug().Str("kind", string(t.kind)).Stringer("user", t.id).Uint64("seq", t.seq).Msg("开始拉取列表")
}

func (t *ticket) Finished(coll model.Collection, err error) {
	c := t.c
	c.mu.Lock()
	defer c.mu.Unlock()

	sl := c.state.slots[t.kind]
	if t.generation != c.state.generation || t.seq != sl.seq {
		metrics.StaleFetchesDiscarded.WithLabelValues(string(t.kind)).Inc()
		c.log.Debug().Str("kind", string(t.kind)).Uint64("seq", t.seq).Msg("丢弃过期的拉取结果")
		return
	}

	sl.loading = false
	if err != nil {
		sl.alert = alerts[t.kind]
		c.log.Warn().Err(err).Str("kind", string(t.kind)).Stringer("user", t.id).Msg("列表拉取失败")
		return
	}
	if coll == nil {
		coll = model.Collection{}
	}
	sl.items = coll
	c.surfaces[t.kind].SetItemCount(len(coll))
}
