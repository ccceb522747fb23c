package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cinerec/internal/tmdb"
	"github.com/user/cinerec/internal/utils"
)

func TestNewRequiresToken(t *testing.T) {
	_, err := tmdb.New(" ", "https://example.com", nil)
	assert.ErrorIs(t, err, tmdb.ErrNoToken)
}

func TestMovieDetailsSendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/278", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":278,"title":"The Shawshank Redemption","poster_path":"/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("secret", server.URL+"/3/", utils.WrapHTTPClient(server.Client()))
	require.NoError(t, err)

	details, err := client.MovieDetails(context.Background(), 278)
	require.NoError(t, err)
	assert.Equal(t, "/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg", details.PosterPath)
}

func TestMovieDetailsWithoutPoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Lost"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("secret", server.URL, utils.WrapHTTPClient(server.Client()))
	require.NoError(t, err)

	details, err := client.MovieDetails(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, details.PosterPath)
}

func TestMovieDetailsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("bad", server.URL, utils.WrapHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = client.MovieDetails(context.Background(), 1)
	var statusErr *utils.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", tmdb.PosterURL("https://image.tmdb.org/t/p", "w500", "/abc.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", tmdb.PosterURL("https://image.tmdb.org/t/p/", "w500", "abc.jpg"))
	assert.Empty(t, tmdb.PosterURL("https://image.tmdb.org/t/p", "w500", ""))
}

type failingFetcher struct{ calls int }

func (f *failingFetcher) MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error) {
	f.calls++
	return nil, errors.New("boom")
}

func TestGuardedClientOpensAfterFailures(t *testing.T) {
	next := &failingFetcher{}
	guarded := tmdb.NewGuardedClient(next, tmdb.BreakerSettings{
		MinRequests:  3,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      time.Minute,
	})

	for i := 0; i < 3; i++ {
		_, err := guarded.MovieDetails(context.Background(), 1)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, guarded.State())

	_, err := guarded.MovieDetails(context.Background(), 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func guardedOver(t *testing.T, status int) (*tmdb.GuardedClient, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/movie/999" {
			_, _ = w.Write([]byte(`{"id":999,"poster_path":"/ok.jpg"}`))
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("secret", server.URL, utils.WrapHTTPClient(server.Client()))
	require.NoError(t, err)
	return tmdb.NewGuardedClient(client, tmdb.DefaultBreakerSettings()), calls
}

func TestGuardedClientIgnoresPerMovieNotFound(t *testing.T) {
	guarded, calls := guardedOver(t, http.StatusNotFound)

	for id := int64(1); id <= 15; id++ {
		_, err := guarded.MovieDetails(context.Background(), id)
		var statusErr *utils.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.Code)
	}
	assert.Equal(t, gobreaker.StateClosed, guarded.State())
	assert.EqualValues(t, 15, calls.Load())

	details, err := guarded.MovieDetails(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, "/ok.jpg", details.PosterPath)
}

func TestGuardedClientTripsOnServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			guarded, _ := guardedOver(t, status)

			for id := int64(1); id <= 10; id++ {
				_, _ = guarded.MovieDetails(context.Background(), id)
			}
			assert.Equal(t, gobreaker.StateOpen, guarded.State())

			_, err := guarded.MovieDetails(context.Background(), 999)
			assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		})
	}
}
