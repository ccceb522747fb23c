package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/cinerec/internal/config"
	"github.com/user/cinerec/internal/middleware"
	"github.com/user/cinerec/internal/model"
	"github.com/user/cinerec/internal/service"
	"github.com/user/cinerec/internal/session"
)

// Handler HTTP 处理器
type Handler struct {
	Config *config.Config
	Store  *session.Store
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, store *session.Store) *Handler {
	return &Handler{
		Config: cfg,
		Store:  store,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"Path":     c.Request.URL.Path,
	}

	if ctrl := middleware.Controller(c); ctrl != nil {
		if id := ctrl.Identifier(); !id.None() {
			res["UserID"] = id
		}
	}

	// 合并传入的数据
	for k, v := range data {
		res[k] = v
	}

	return res
}

// ==================== 页面 ====================

// Home 未登录显示输入页，已登录显示两行轮播
func (h *Handler) Home(c *gin.Context) {
	ctrl := middleware.Controller(c)
	if ctrl == nil || ctrl.Identifier().None() {
		h.renderGate(c, "", "")
		return
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":       "Welcome, user " + ctrl.Identifier().String() + " - " + h.Config.SiteName,
		"Watched":     ctrl.View(model.KindWatched),
		"Recommended": ctrl.View(model.KindRecommended),
	}))
}

func (h *Handler) renderGate(c *gin.Context, input, message string) {
	c.HTML(http.StatusOK, "gate.html", h.RenderData(c, gin.H{
		"Title":         h.Config.SiteName,
		"Input":         input,
		"Error":         message,
		"MaxIdentifier": int64(model.MaxIdentifier),
	}))
}

// Identify 提交用户 ID
func (h *Handler) Identify(c *gin.Context) {
	ctrl := middleware.Controller(c)
	raw := c.PostForm("user_id")

	if _, err := ctrl.Identify(c.Request.Context(), raw); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.renderGate(c, raw, verr.Message())
			return
		}
		c.HTML(http.StatusInternalServerError, "gate.html", h.RenderData(c, gin.H{
			"Title": h.Config.SiteName,
			"Error": "Something went wrong, please try again.",
		}))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	if ctrl := middleware.Controller(c); ctrl != nil {
		ctrl.Logout()
	}
	c.Redirect(http.StatusFound, "/")
}

// ==================== htmx 片段 ====================

// CarouselHTMX 返回轮播片段，加载中时片段自带轮询
func (h *Handler) CarouselHTMX(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		c.String(http.StatusNotFound, "")
		return
	}
	ctrl := middleware.Controller(c)
	c.HTML(http.StatusOK, "partials/carousel.html", ctrl.View(kind))
}

// RecommendationsHTMX 发起推荐请求，返回加载中的推荐片段
func (h *Handler) RecommendationsHTMX(c *gin.Context) {
	ctrl := middleware.Controller(c)
	if err := ctrl.RequestRecommendations(c.Request.Context()); err != nil {
		if errors.Is(err, session.ErrAnonymous) {
			c.Header("HX-Redirect", "/")
			c.String(http.StatusUnauthorized, "")
			return
		}
		c.String(http.StatusInternalServerError, "")
		return
	}
	c.HTML(http.StatusOK, "partials/carousel.html", ctrl.View(model.KindRecommended))
}
