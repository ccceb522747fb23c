package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/user/cinerec/internal/backend"
	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/metrics"
	"github.com/user/cinerec/internal/model"
)

// DefaultRecommendationCount 默认推荐条数
const DefaultRecommendationCount = 10

// Source 推荐后端的列表接口
type Source interface {
	WatchedMovies(ctx context.Context, userID model.Identifier) ([]backend.WatchedMovie, error)
	Recommendations(ctx context.Context, userID model.Identifier, k int) ([]backend.Recommendation, error)
}

// Resolver 海报解析，失败返回空字符串
type Resolver interface {
	Resolve(ctx context.Context, movieID int64) string
}

// Tracker 接收一次拉取的开始和结束，Finished 在所有退出路径上都会被调用
type Tracker interface {
	Started()
	Finished(coll model.Collection, err error)
}

type noopTracker struct{}

func (noopTracker) Started()                         {}
func (noopTracker) Finished(model.Collection, error) {}

// CollectionFetcher 拉取列表并并发补全海报
type CollectionFetcher struct {
	source   Source
	resolver Resolver
	k        int
	log      zerolog.Logger
}

// NewCollectionFetcher 创建列表拉取服务，k 为推荐条数
func NewCollectionFetcher(source Source, resolver Resolver, k int) *CollectionFetcher {
	if k <= 0 {
		k = DefaultRecommendationCount
	}
	return &CollectionFetcher{
		source:   source,
		resolver: resolver,
		k:        k,
		log:      logging.Component("collection"),
	}
}

// Fetch 拉取指定类型的列表
// 1. 观影记录按评分降序（稳定排序），推荐保持后端顺序
// 2. 所有条目的海报解析同时启动，全部完成后按原顺序返回
// 3. 列表请求失败则整体失败；单个海报失败只影响该条目
func (f *CollectionFetcher) Fetch(ctx context.Context, id model.Identifier, kind model.Kind, tracker Tracker) (coll model.Collection, err error) {
	if tracker == nil {
		tracker = noopTracker{}
	}
	start := time.Now()
	tracker.Started()

	defer func() {
		if rec := recover(); rec != nil {
			coll, err = nil, fmt.Errorf("fetch %s for %s panicked: %v", kind, id, rec)
		}
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.CollectionFetchDuration.WithLabelValues(string(kind), outcome).Observe(time.Since(start).Seconds())
		tracker.Finished(coll, err)
	}()

	items, err := f.list(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	coll = f.enrich(ctx, items)
	f.log.Debug().Str("kind", string(kind)).Stringer("user", id).Int("items", len(coll)).Dur("took", time.Since(start)).Msg("列表拉取完成")
	return coll, nil
}

func (f *CollectionFetcher) list(ctx context.Context, id model.Identifier, kind model.Kind) ([]model.Item, error) {
	switch kind {
	case model.KindWatched:
		watched, err := f.source.WatchedMovies(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch watched: %w", err)
		}
		sort.SliceStable(watched, func(i, j int) bool {
			return watched[i].Rating > watched[j].Rating
		})
		items := make([]model.Item, len(watched))
		for i, w := range watched {
			items[i] = model.Item{MovieID: w.MovieID, Title: w.Title, Score: model.RatingScore(w.Rating)}
		}
		return items, nil

	case model.KindRecommended:
		recs, err := f.source.Recommendations(ctx, id, f.k)
		if err != nil {
			return nil, fmt.Errorf("fetch recommendations: %w", err)
		}
		items := make([]model.Item, len(recs))
		for i, r := range recs {
			items[i] = model.Item{MovieID: r.MovieID, Title: r.Title, Score: model.PredictedScore(r.PredictedScore)}
		}
		return items, nil

	default:
		return nil, fmt.Errorf("unknown collection kind %q", kind)
	}
}

// enrich 每个条目一个 goroutine，结果按下标写回
func (f *CollectionFetcher) enrich(ctx context.Context, items []model.Item) model.Collection {
	if len(items) == 0 {
		return model.Collection{}
	}
	mapper := iter.Mapper[model.Item, model.EnrichedItem]{MaxGoroutines: len(items)}
	enriched := mapper.Map(items, func(it *model.Item) model.EnrichedItem {
		return model.EnrichedItem{Item: *it, Poster: f.resolver.Resolve(ctx, it.MovieID)}
	})
	return model.Collection(enriched)
}
