package router

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/cinerec/internal/handler"
	"github.com/user/cinerec/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查与指标，不绑定会话
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := r.Group("")
	app.Use(middleware.BindSession(h.Store))

	// ==================== 页面 ====================
	app.GET("/", h.Home)
	app.POST("/session", h.Identify)
	app.POST("/session/logout", h.Logout)

	// ==================== htmx 片段 ====================
	htmx := app.Group("/htmx")
	htmx.Use(middleware.RequireIdentity())
	{
		htmx.GET("/carousel/:kind", h.CarouselHTMX)
		htmx.POST("/recommendations", h.RecommendationsHTMX)
	}

	// ==================== JSON API ====================
	api := app.Group("/api")
	{
		api.GET("/session", h.SessionState)

		identified := api.Group("")
		identified.Use(middleware.RequireIdentity())
		identified.POST("/layout/:kind", h.ReportLayout)
		identified.POST("/scroll/:kind", h.Scroll)
	}
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
// 页面注册为 {page}.html，片段单独注册为 partials/{name}.html 供 htmx 使用
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	partials, err := filepath.Glob(filepath.Join(templatesDir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	funcMap := FuncMap()

	// 注册所有页面模板
	pages := []string{"gate", "home"}
	for _, page := range pages {
		viewPath := filepath.Join(templatesDir, "pages", page+".html")
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	for _, partial := range partials {
		r.AddFromFilesFuncs("partials/"+filepath.Base(partial), funcMap, partial)
	}

	return r, nil
}
