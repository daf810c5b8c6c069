package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/logger"
	"github.com/promodash/internal/metrics"
	"github.com/promodash/internal/service"
	"github.com/promodash/internal/storage"
	"github.com/promodash/internal/view"
	"gorm.io/gorm"
)

// Resource is the handler set of one content collection.
type Resource interface {
	Schema() service.Schema

	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)

	ShowList(c *gin.Context)
	ShowNew(c *gin.Context)
	ShowEdit(c *gin.Context)
	SubmitCreate(c *gin.Context)
	SubmitEdit(c *gin.Context)
	SubmitDelete(c *gin.Context)
}

// Options carries the optional collaborators of the API.
type Options struct {
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Cache    service.ListCache
	PageSize int
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	logger    *logger.Logger
	metrics   *metrics.Metrics
	store     storage.Store
	pageSize  int
	now       func() time.Time
	resources []Resource
}

// NewAPI constructs a handler set with one resource per content collection.
func NewAPI(gdb *gorm.DB, store storage.Store, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}

	a := &API{
		db:       gdb,
		logger:   log,
		metrics:  opts.Metrics,
		store:    store,
		pageSize: pageSize,
		now:      time.Now,
	}

	a.resources = []Resource{
		newContentHandler(a, service.NewContentService[db.Banner](gdb, service.Banners, opts.Cache).WithLogger(log)),
		newContentHandler(a, service.NewContentService[db.GalleryImage](gdb, service.GalleryImages, opts.Cache).WithLogger(log)),
		newContentHandler(a, service.NewContentService[db.GalleryVideo](gdb, service.GalleryVideos, opts.Cache).WithLogger(log)),
		newContentHandler(a, service.NewContentService[db.Media](gdb, service.Medias, opts.Cache).WithLogger(log)),
	}
	return a
}

// Resources returns the collections in navigation order.
func (a *API) Resources() []Resource {
	return a.resources
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) logError(ctx context.Context, msg string, err error, fields map[string]any) {
	if len(fields) > 0 {
		ctx = a.logger.WithFields(ctx, fields)
	}
	a.logger.Error(ctx, msg, err)
}

func (a *API) navItems(active string) []view.NavItem {
	items := make([]view.NavItem, 0, len(a.resources))
	for _, res := range a.resources {
		schema := res.Schema()
		items = append(items, view.NavItem{
			Label:  schema.Title(),
			Href:   adminPath(schema),
			Icon:   schema.Key,
			Active: schema.Key == active,
		})
	}
	return items
}

func adminPath(schema service.Schema) string {
	return "/admin/" + schema.Collection
}
