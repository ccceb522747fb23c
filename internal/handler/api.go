package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/cinerec/internal/middleware"
	"github.com/user/cinerec/internal/model"
	"github.com/user/cinerec/internal/utils"
)

// layoutRequest 浏览器上报的测量结果，card_width 为 0 表示当前没有卡片
type layoutRequest struct {
	CardWidth    float64 `json:"card_width" binding:"gte=0,lte=10000"`
	VisibleCount int     `json:"visible_count" binding:"omitempty,gte=1,lte=50"`
}

type scrollRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next prev"`
}

// ReportLayout 上报卡片宽度，返回重新计算后的几何信息
func (h *Handler) ReportLayout(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		utils.NotFound(c, "unknown carousel")
		return
	}
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid layout report")
		return
	}

	ctrl := middleware.Controller(c)
	surface := ctrl.Surface(kind)
	if req.VisibleCount > 0 {
		surface.SetVisibleCount(req.VisibleCount)
	}
	ctrl.Viewport(kind).Report(req.CardWidth)

	utils.Success(c, surface.Geometry())
}

// Scroll 翻页，返回滚动增量
func (h *Handler) Scroll(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		utils.NotFound(c, "unknown carousel")
		return
	}
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "direction must be next or prev")
		return
	}

	surface := middleware.Controller(c).Surface(kind)
	var delta int
	if req.Direction == "next" {
		delta = surface.Next()
	} else {
		delta = surface.Prev()
	}

	utils.Success(c, gin.H{
		"delta":    delta,
		"geometry": surface.Geometry(),
	})
}

// SessionState 当前会话状态
func (h *Handler) SessionState(c *gin.Context) {
	utils.Success(c, middleware.Controller(c).Snapshot())
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.Store.Len(),
	})
}
