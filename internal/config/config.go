package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env       string
	AppSecret string
	Port      string
	SiteName  string

	// 推荐后端
	BackendURL          string
	RecommendationCount int

	// TMDB
	TMDBAPIURL     string
	TMDBImageURL   string
	TMDBPosterSize string
	TMDBToken      string

	// 轮播
	CarouselVisible int
	CarouselGap     float64

	HTTPTimeout     time.Duration
	SessionCapacity int
	SessionTTL      time.Duration

	LogLevel  string
	LogFormat string

	TemplatesDir string
	StaticDir    string
}

// Load 加载配置
func Load() *Config {
	env := getEnv("APP_ENV", "development")

	appSecret := getEnv("APP_SECRET", defaultSecret)
	if env == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	logFormat := "json"
	if env == "development" {
		logFormat = "console"
	}

	return &Config{
		Env:                 env,
		AppSecret:           appSecret,
		Port:                getEnv("PORT", "3000"),
		SiteName:            getEnv("SITE_NAME", "CineRec"),
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8080"),
		RecommendationCount: getEnvInt("RECOMMENDATION_COUNT", 10),
		TMDBAPIURL:          getEnv("TMDB_API_URL", "https://api.themoviedb.org/3"),
		TMDBImageURL:        getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
		TMDBPosterSize:      getEnv("TMDB_POSTER_SIZE", "w500"),
		TMDBToken:           getEnv("TMDB_TOKEN", ""),
		CarouselVisible:     getEnvInt("CAROUSEL_VISIBLE", 5),
		CarouselGap:         getEnvFloat("CAROUSEL_GAP", 16),
		HTTPTimeout:         getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		SessionCapacity:     getEnvInt("SESSION_CAPACITY", 1000),
		SessionTTL:          getEnvDuration("SESSION_TTL", 12*time.Hour),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", logFormat),
		TemplatesDir:        getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:           getEnv("STATIC_DIR", "./web/static"),
	}
}

// Addr 监听地址
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Production 是否生产环境
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
