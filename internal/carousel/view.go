package carousel

import "github.com/user/cinerec/internal/model"

// Phase 轮播展示阶段
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseEmpty
	PhaseCards
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	default:
		return "cards"
	}
}

// Titles 每种列表的标题
var Titles = map[model.Kind]string{
	model.KindWatched:     "Your watched movies",
	model.KindRecommended: "Recommended for you",
}

// Card 单张卡片
type Card struct {
	MovieID    int64
	Title      string
	Poster     string
	HasPoster  bool
	ScoreLabel string
}

// View 模板渲染用的轮播视图
type View struct {
	Kind          model.Kind
	Title         string
	Phase         Phase
	Cards         []Card
	Visible       int
	Gap           float64
	ScrollAmount  int
	ViewportWidth int
	Alert         string
}

// Loading 是否处于加载中
func (v View) Loading() bool { return v.Phase == PhaseLoading }

// Empty 加载完成但没有数据
func (v View) Empty() bool { return v.Phase == PhaseEmpty }

// Render 生成视图：加载中优先，其次空列表，否则渲染卡片
func Render(kind model.Kind, coll model.Collection, loading bool, g Geometry, alert string) View {
	v := View{
		Kind:          kind,
		Title:         Titles[kind],
		Visible:       g.Visible,
		Gap:           g.Gap,
		ScrollAmount:  g.ScrollAmount,
		ViewportWidth: g.ViewportWidth,
		Alert:         alert,
	}
	switch {
	case loading:
		v.Phase = PhaseLoading
	case len(coll) == 0:
		v.Phase = PhaseEmpty
	default:
		v.Phase = PhaseCards
		v.Cards = make([]Card, len(coll))
		for i, it := range coll {
			v.Cards[i] = Card{
				MovieID:    it.MovieID,
				Title:      it.Title,
				Poster:     it.Poster,
				HasPoster:  it.HasPoster(),
				ScoreLabel: it.Score.Label(),
			}
		}
	}
	return v
}
