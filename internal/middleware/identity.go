package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user/cinerec/internal/logging"
	"github.com/user/cinerec/internal/session"
	"github.com/user/cinerec/internal/utils"
)

const (
	// SessionKeyName cookie 会话中保存控制器 key 的字段
	SessionKeyName = "sid"

	ctxController = "controller"
	ctxSessionKey = "session_key"
)

// BindSession 根据 cookie 会话找到（或新建）当前浏览器的控制器
func BindSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		key, _ := sess.Get(SessionKeyName).(string)

		ctrl, ok := store.Get(key)
		if !ok {
			key, ctrl = store.Create()
			sess.Set(SessionKeyName, key)
			if err := sess.Save(); err != nil {
				logging.Warn().Err(err).Msg("保存会话失败")
			}
		}

		c.Set(ctxController, ctrl)
		c.Set(ctxSessionKey, key)
		c.Next()
	}
}

// RequireIdentity 必须已输入用户 ID
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctrl := Controller(c)
		if ctrl != nil && !ctrl.Identifier().None() {
			c.Next()
			return
		}
		// htmx 请求由前端整页跳转
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Redirect", "/")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// 页面请求回到首页输入 ID
		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		utils.Unauthorized(c, "")
		c.Abort()
	}
}

// Controller 从上下文获取当前会话控制器（未绑定返回 nil）
func Controller(c *gin.Context) *session.Controller {
	if v, exists := c.Get(ctxController); exists {
		if ctrl, ok := v.(*session.Controller); ok {
			return ctrl
		}
	}
	return nil
}

// SessionKey 当前会话 key
func SessionKey(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}
