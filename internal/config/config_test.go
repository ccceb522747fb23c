package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "BACKEND_URL", "RECOMMENDATION_COUNT", "CAROUSEL_GAP", "HTTP_TIMEOUT", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBAPIURL)
	assert.Equal(t, "https://image.tmdb.org/t/p", cfg.TMDBImageURL)
	assert.Equal(t, "w500", cfg.TMDBPosterSize)
	assert.Equal(t, 10, cfg.RecommendationCount)
	assert.Equal(t, 5, cfg.CarouselVisible)
	assert.Equal(t, 16.0, cfg.CarouselGap)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("RECOMMENDATION_COUNT", "20")
	t.Setenv("CAROUSEL_GAP", "12.5")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("LOG_FORMAT", "")

	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 20, cfg.RecommendationCount)
	assert.Equal(t, 12.5, cfg.CarouselGap)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RECOMMENDATION_COUNT", "many")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.RecommendationCount)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
