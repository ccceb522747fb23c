package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/user/cinerec/internal/backend"
	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/metrics"
	"github.com/user/cinerec/internal/tmdb"
)

// LinkLookup 查询电影对应的 TMDB ID
type LinkLookup interface {
	MovieLink(ctx context.Context, movieID int64) (backend.MovieLink, error)
}

// PosterResolver 两步解析海报：后端关联 -> TMDB 详情
type PosterResolver struct {
	links     LinkLookup
	details   tmdb.DetailsFetcher
	imageBase string
	size      string
	group     singleflight.Group
	log       zerolog.Logger
}

// NewPosterResolver 创建海报解析器，details 为 nil 时所有条目都无海报
func NewPosterResolver(links LinkLookup, details tmdb.DetailsFetcher, imageBase, size string) *PosterResolver {
	return &PosterResolver{
		links:     links,
		details:   details,
		imageBase: imageBase,
		size:      size,
		log:       logging.Component("resolver"),
	}
}

// Resolve 返回海报 URL，任何失败都返回空字符串
// 同一电影的并发解析通过 singleflight 合并，不做缓存
func (r *PosterResolver) Resolve(ctx context.Context, movieID int64) string {
	v, _, _ := r.group.Do(strconv.FormatInt(movieID, 10), func() (interface{}, error) {
		return r.resolve(ctx, movieID), nil
	})
	poster, _ := v.(string)
	return poster
}

func (r *PosterResolver) resolve(ctx context.Context, movieID int64) (poster string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Int64("movie_id", movieID).Interface("panic", rec).Msg("海报解析发生恐慌")
			poster = ""
		}
	}()

	link, err := r.links.MovieLink(ctx, movieID)
	if err != nil {
		r.outcome("link_error")
		r.log.Debug().Err(err).Int64("movie_id", movieID).Msg("获取关联失败")
		return ""
	}
	if link.TMDBID <= 0 {
		r.outcome("no_link")
		return ""
	}
	if r.details == nil {
		r.outcome("disabled")
		return ""
	}

	details, err := r.details.MovieDetails(ctx, link.TMDBID)
	if err != nil {
		r.outcome("details_error")
		ev := r.log.Debug()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			ev = r.log.Warn()
		}
		ev.Err(err).Int64("movie_id", movieID).Int64("tmdb_id", link.TMDBID).Msg("获取 TMDB 详情失败")
		return ""
	}
	if details == nil || details.PosterPath == "" {
		r.outcome("no_poster")
		return ""
	}

	r.outcome("resolved")
	return tmdb.PosterURL(r.imageBase, r.size, details.PosterPath)
}

func (r *PosterResolver) outcome(label string) {
	metrics.PosterResolutions.WithLabelValues(label).Inc()
}
