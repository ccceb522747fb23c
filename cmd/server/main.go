package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/user/cinerec/internal/backend"
	"github.com/user/cinerec/internal/config"
	"github.com/user/cinerec/internal/handler"
	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/middleware"
	"github.com/user/cinerec/internal/router"
	"github.com/user/cinerec/internal/service"
	"github.com/user/cinerec/internal/session"
	"github.com/user/cinerec/internal/tmdb"
	"github.com/user/cinerec/internal/utils"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPTimeout)

	// 推荐后端
	backendClient, err := backend.New(cfg.BackendURL, httpClient)
	if err != nil {
		logging.Fatal().Err(err).Msg("推荐后端配置错误")
	}

	// TMDB（未配置令牌时所有条目显示占位图）
	var details tmdb.DetailsFetcher
	tmdbClient, err := tmdb.New(cfg.TMDBToken, cfg.TMDBAPIURL, httpClient)
	switch {
	case errors.Is(err, tmdb.ErrNoToken):
		logging.Warn().Msg("未设置 TMDB_TOKEN，海报功能已禁用")
	case err != nil:
		logging.Fatal().Err(err).Msg("TMDB 配置错误")
	default:
		details = tmdb.NewGuardedClient(tmdbClient, tmdb.DefaultBreakerSettings())
	}

	resolver := service.NewPosterResolver(backendClient, details, cfg.TMDBImageURL, cfg.TMDBPosterSize)
	fetcher := service.NewCollectionFetcher(backendClient, resolver, cfg.RecommendationCount)
	gate := service.NewIdentifierGate()

	store, err := session.NewStore(cfg.SessionCapacity, cfg.SessionTTL, func() *session.Controller {
		return session.NewController(gate, fetcher, cfg.CarouselVisible, cfg.CarouselGap)
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("会话存储初始化失败")
	}

	// 启动定时清理任务
	janitor := session.NewJanitor(store, 0)
	janitor.Start()

	// 初始化 Gin
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 设置 Session 中间件：浏览器关闭即失效
	cookieStore := cookie.NewStore([]byte(cfg.AppSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("cinerec", cookieStore))

	// 加载模板（使用 multitemplate 解决继承问题）
	renderer, err := router.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("模板加载失败")
	}
	r.HTMLRender = renderer

	// 静态文件
	r.Static("/static", cfg.StaticDir)

	h := handler.NewHandler(cfg, store)
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logging.Info().Str("addr", srv.Addr).Str("backend", cfg.BackendURL).Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("服务器强制关闭")
	}
	janitor.Stop()
	store.Purge()

	logging.Info().Msg("服务器已退出")
}
