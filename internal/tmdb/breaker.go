package tmdb

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/metrics"
	"github.com/user/cinerec/internal/utils"
)

const breakerName = "tmdb-api"

// BreakerSettings 熔断参数
type BreakerSettings struct {
	MinRequests  uint32        // 统计失败率前的最少请求数
	FailureRatio float64       // 达到该失败率时熔断
	Interval     time.Duration // closed 状态下计数重置周期
	Timeout      time.Duration // open 到 half-open 的等待时间
}

// DefaultBreakerSettings 默认熔断参数：至少 10 次请求且失败率 >= 60% 时熔断，1 分钟后半开
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		Timeout:      time.Minute,
	}
}

// GuardedClient 带熔断保护的 DetailsFetcher
type GuardedClient struct {
	next DetailsFetcher
	cb   *gobreaker.CircuitBreaker[*MovieDetails]
}

var _ DetailsFetcher = (*GuardedClient)(nil)

// NewGuardedClient 用熔断器包装 TMDB 客户端
func NewGuardedClient(next DetailsFetcher, s BreakerSettings) *GuardedClient {
	log := logging.Component("tmdb")
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*MovieDetails](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &GuardedClient{next: next, cb: cb}
}

// MovieDetails 熔断打开时直接返回 gobreaker.ErrOpenState
func (g *GuardedClient) MovieDetails(ctx context.Context, tmdbID int64) (*MovieDetails, error) {
	return g.cb.Execute(func() (*MovieDetails, error) {
		return g.next.MovieDetails(ctx, tmdbID)
	})
}

// State 当前熔断状态
func (g *GuardedClient) State() gobreaker.State {
	return g.cb.State()
}

// isSuccessful 只有传输错误、5xx 和 429 计入失败
// 单部电影的 4xx（如 404）只影响该条目；调用方取消也不计入
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.Code
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
