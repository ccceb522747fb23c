package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cinerec/internal/backend"
	"github.com/user/cinerec/internal/model"
	"github.com/user/cinerec/internal/tmdb"
)

type fakeSource struct {
	watched    []backend.WatchedMovie
	recs       []backend.Recommendation
	err        error
	requestedK int
}

func (f *fakeSource) WatchedMovies(ctx context.Context, id model.Identifier) ([]backend.WatchedMovie, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]backend.WatchedMovie, len(f.watched))
	copy(out, f.watched)
	return out, nil
}

func (f *fakeSource) Recommendations(ctx context.Context, id model.Identifier, k int) ([]backend.Recommendation, error) {
	f.requestedK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

// delayResolver 按电影 ID 设置延迟，返回 poster-{id}
type delayResolver struct {
	delays map[int64]time.Duration
}

func (r delayResolver) Resolve(ctx context.Context, movieID int64) string {
	time.Sleep(r.delays[movieID])
	return fmt.Sprintf("poster-%d", movieID)
}

// barrierResolver 只有当所有解析都已开始时才返回
type barrierResolver struct {
	total   int
	mu      sync.Mutex
	started int
	all     chan struct{}
}

func newBarrierResolver(total int) *barrierResolver {
	return &barrierResolver{total: total, all: make(chan struct{})}
}

func (r *barrierResolver) Resolve(ctx context.Context, movieID int64) string {
	r.mu.Lock()
	r.started++
	if r.started == r.total {
		close(r.all)
	}
	r.mu.Unlock()

	select {
	case <-r.all:
		return fmt.Sprintf("poster-%d", movieID)
	case <-time.After(2 * time.Second):
		return ""
	}
}

type recordingTracker struct {
	started  int
	finished int
	coll     model.Collection
	err      error
}

func (r *recordingTracker) Started() { r.started++ }

func (r *recordingTracker) Finished(coll model.Collection, err error) {
	r.finished++
	r.coll = coll
	r.err = err
}

func movieIDs(coll model.Collection) []int64 {
	ids := make([]int64, len(coll))
	for i, it := range coll {
		ids[i] = it.MovieID
	}
	return ids
}

func TestFetchWatchedSortedByRating(t *testing.T) {
	source := &fakeSource{watched: []backend.WatchedMovie{
		{MovieID: 1, Title: "Three", Rating: 3},
		{MovieID: 2, Title: "Five", Rating: 5},
		{MovieID: 3, Title: "One", Rating: 1},
	}}
	f := NewCollectionFetcher(source, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 42, model.KindWatched, nil)
	require.NoError(t, err)
	require.Len(t, coll, 3)

	assert.Equal(t, []int64{2, 1, 3}, movieIDs(coll))
	assert.Equal(t, 5.0, coll[0].Score.Value())
	assert.Equal(t, model.KindWatched, coll[0].Score.Kind())
	assert.Equal(t, "poster-2", coll[0].Poster)
}

func TestFetchWatchedStableForEqualRatings(t *testing.T) {
	source := &fakeSource{watched: []backend.WatchedMovie{
		{MovieID: 10, Rating: 4},
		{MovieID: 11, Rating: 4},
		{MovieID: 12, Rating: 5},
		{MovieID: 13, Rating: 4},
	}}
	f := NewCollectionFetcher(source, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindWatched, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 10, 11, 13}, movieIDs(coll))
}

func TestFetchRecommendationsKeepBackendOrder(t *testing.T) {
	source := &fakeSource{recs: []backend.Recommendation{
		{MovieID: 5, Title: "A", PredictedScore: 3.1},
		{MovieID: 9, Title: "B", PredictedScore: 4.9},
		{MovieID: 2, Title: "C", PredictedScore: 4.2},
	}}
	f := NewCollectionFetcher(source, delayResolver{}, 7)

	coll, err := f.Fetch(context.Background(), 42, model.KindRecommended, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 9, 2}, movieIDs(coll))
	assert.Equal(t, 7, source.requestedK)
	assert.Equal(t, "Predicted ★ 4.90", coll[1].Score.Label())
}

func TestFetchDefaultRecommendationCount(t *testing.T) {
	source := &fakeSource{}
	f := NewCollectionFetcher(source, delayResolver{}, 0)

	_, err := f.Fetch(context.Background(), 42, model.KindRecommended, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecommendationCount, source.requestedK)
}

func TestFetchPreservesOrderRegardlessOfCompletion(t *testing.T) {
	source := &fakeSource{recs: []backend.Recommendation{
		{MovieID: 1}, {MovieID: 2}, {MovieID: 3}, {MovieID: 4},
	}}
	// 先到的条目最晚完成
	resolver := delayResolver{delays: map[int64]time.Duration{
		1: 80 * time.Millisecond,
		2: 60 * time.Millisecond,
		3: 40 * time.Millisecond,
		4: 0,
	}}
	f := NewCollectionFetcher(source, resolver, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindRecommended, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, movieIDs(coll))
	for _, it := range coll {
		assert.Equal(t, fmt.Sprintf("poster-%d", it.MovieID), it.Poster)
	}
}

func TestFetchStartsAllResolutionsConcurrently(t *testing.T) {
	const n = 25
	recs := make([]backend.Recommendation, n)
	for i := range recs {
		recs[i] = backend.Recommendation{MovieID: int64(i + 1)}
	}
	resolver := newBarrierResolver(n)
	f := NewCollectionFetcher(&fakeSource{recs: recs}, resolver, n)

	coll, err := f.Fetch(context.Background(), 1, model.KindRecommended, nil)
	require.NoError(t, err)
	require.Len(t, coll, n)
	for _, it := range coll {
		assert.True(t, it.HasPoster(), "movie %d resolved before all lookups started", it.MovieID)
	}
}

func TestFetchPartialPosterFailure(t *testing.T) {
	source := &fakeSource{recs: []backend.Recommendation{{MovieID: 1}, {MovieID: 2}}}
	resolver := NewPosterResolver(
		&fakeLinks{links: map[int64]backend.MovieLink{1: {TMDBID: 100}}},
		&fakeDetails{details: map[int64]*tmdb.MovieDetails{100: {PosterPath: "/one.jpg"}}},
		testImageBase, testSize,
	)
	f := NewCollectionFetcher(source, resolver, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindRecommended, nil)
	require.NoError(t, err)
	require.Len(t, coll, 2)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/one.jpg", coll[0].Poster)
	assert.False(t, coll[1].HasPoster())
}

func TestFetchEmptyList(t *testing.T) {
	tracker := &recordingTracker{}
	f := NewCollectionFetcher(&fakeSource{}, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindWatched, tracker)
	require.NoError(t, err)
	assert.NotNil(t, coll)
	assert.Empty(t, coll)
	assert.Equal(t, 1, tracker.finished)
}

func TestFetchPrimaryFailure(t *testing.T) {
	tracker := &recordingTracker{}
	f := NewCollectionFetcher(&fakeSource{err: errors.New("backend down")}, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindWatched, tracker)
	require.Error(t, err)
	assert.Nil(t, coll)
	assert.Equal(t, 1, tracker.started)
	assert.Equal(t, 1, tracker.finished)
	assert.Equal(t, err, tracker.err)
}

type panicSource struct{}

func (panicSource) WatchedMovies(context.Context, model.Identifier) ([]backend.WatchedMovie, error) {
	panic("unexpected")
}

func (panicSource) Recommendations(context.Context, model.Identifier, int) ([]backend.Recommendation, error) {
	panic("unexpected")
}

func TestFetchRecoversPanicAndFinishes(t *testing.T) {
	tracker := &recordingTracker{}
	f := NewCollectionFetcher(panicSource{}, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindRecommended, tracker)
	require.Error(t, err)
	assert.Nil(t, coll)
	assert.Equal(t, 1, tracker.finished)
	assert.Error(t, tracker.err)
}

func TestFetchUnknownKind(t *testing.T) {
	f := NewCollectionFetcher(&fakeSource{}, delayResolver{}, 10)
	_, err := f.Fetch(context.Background(), 1, model.Kind("favorites"), nil)
	assert.Error(t, err)
}

func TestFetchTrackerSuccess(t *testing.T) {
	tracker := &recordingTracker{}
	source := &fakeSource{watched: []backend.WatchedMovie{{MovieID: 8, Rating: 2}}}
	f := NewCollectionFetcher(source, delayResolver{}, 10)

	coll, err := f.Fetch(context.Background(), 1, model.KindWatched, tracker)
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.started)
	assert.Equal(t, 1, tracker.finished)
	assert.NoError(t, tracker.err)
	assert.Equal(t, coll, tracker.coll)
}
