package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/handler"
	"github.com/promodash/internal/logger"
	"github.com/promodash/internal/metrics"
	"github.com/promodash/internal/service"
	"github.com/promodash/internal/storage"
	"github.com/promodash/internal/view"
	"gorm.io/gorm"
)

const sessionName = "promodash_session"

// Options 汇总构建路由所需的依赖
type Options struct {
	DB      *gorm.DB
	Store   storage.Store
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Cache   service.ListCache
	// UploadDir is served as static files under UploadURLPath when set.
	UploadDir     string
	UploadURLPath string
	SessionSecret string
	PageSize      int
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("router: database is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("router: upload store is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(handler.Recovery(log), handler.RequestID(log), handler.RequestLogger(log), opts.Metrics.Middleware())

	// 配置会话中间件，用于表单提交后的提示信息
	secret := opts.SessionSecret
	if strings.TrimSpace(secret) == "" {
		secret = "promodash-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	if opts.UploadDir != "" {
		urlPath := "/" + strings.Trim(opts.UploadURLPath, "/")
		if urlPath == "/" {
			urlPath = "/uploads"
		}
		r.Static(urlPath, opts.UploadDir)
	}

	api := handler.NewAPI(opts.DB, opts.Store, handler.Options{
		Logger:   log,
		Metrics:  opts.Metrics,
		Cache:    opts.Cache,
		PageSize: opts.PageSize,
	})

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/banners")
	})
	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/upload", api.UploadImage)

		for _, res := range api.Resources() {
			base := "/" + res.Schema().Collection
			apiGroup.GET(base, res.List)
			apiGroup.POST(base, res.Create)
			apiGroup.GET(base+"/:id", res.Get)
			apiGroup.PATCH(base+"/:id", res.Update)
			apiGroup.DELETE(base+"/:id", res.Delete)
		}
	}

	admin := r.Group("/admin")
	{
		for _, res := range api.Resources() {
			base := "/" + res.Schema().Collection
			admin.GET(base, res.ShowList)
			admin.GET(base+"/new", res.ShowNew)
			admin.GET(base+"/:id/edit", res.ShowEdit)
			admin.POST(base, res.SubmitCreate)
			admin.POST(base+"/:id", res.SubmitEdit)
			admin.POST(base+"/:id/delete", res.SubmitDelete)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return r, nil
}
