package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/promodash/internal/apperr"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/logger"
	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrMissingRequiredFields = errors.New("missing required fields")
)

var validate = validator.New()

// CreateInput carries the fields accepted when creating a record.
// IsActive is nil when the client omitted it.
type CreateInput struct {
	Title    string
	Image    string
	Link     string
	IsActive *bool
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title    *string
	Image    *string
	Link     *string
	IsActive *bool
}

type linkedRules struct {
	Title string `validate:"required"`
	Image string `validate:"required"`
	Link  string `validate:"required"`
}

type plainRules struct {
	Title string `validate:"required"`
	Image string `validate:"required"`
}

// ListCache stores serialized list results. Implementations are best effort:
// a failed Get is treated as a miss, and a failed Delete keeps List on the
// database until a fresh result has been stored.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ContentService handles CRUD for one content collection.
type ContentService[T any, P db.Record[T]] struct {
	db     *gorm.DB
	schema Schema
	cache  ListCache
	log    *logger.Logger
	now    func() time.Time

	// stale is set when invalidation failed; List bypasses the cached entry
	// until a Set succeeds.
	stale atomic.Bool
}

// NewContentService creates a ContentService. cache may be nil.
func NewContentService[T any, P db.Record[T]](gdb *gorm.DB, schema Schema, cache ListCache) *ContentService[T, P] {
	return &ContentService[T, P]{
		db:     gdb,
		schema: schema,
		cache:  cache,
		log:    logger.Nop(),
		now:    time.Now,
	}
}

// WithLogger sets the logger used for cache failures.
func (s *ContentService[T, P]) WithLogger(log *logger.Logger) *ContentService[T, P] {
	if log != nil {
		s.log = log
	}
	return s
}

// Schema returns the collection configuration.
func (s *ContentService[T, P]) Schema() Schema {
	return s.schema
}

func (s *ContentService[T, P]) cacheKey() string {
	return "promodash:list:" + s.schema.Key
}

// List returns every record ordered by creation time, newest first.
func (s *ContentService[T, P]) List(ctx context.Context) ([]T, error) {
	if s.cache != nil && !s.stale.Load() {
		raw, ok, err := s.cache.Get(ctx, s.cacheKey())
		if err != nil {
			s.warnCache(ctx, "content.cache_get_failed", err)
		} else if ok {
			items := make([]T, 0)
			if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
				return items, nil
			}
		}
	}

	items := make([]T, 0)
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&items).Error; err != nil {
		return items, apperr.Wrap(apperr.KindStore, err, "list "+s.schema.Plural)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, s.cacheKey(), raw); err != nil {
				s.warnCache(ctx, "content.cache_set_failed", err)
			} else {
				s.stale.Store(false)
			}
		}
	}
	return items, nil
}

// Get fetches a record by id.
func (s *ContentService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, ErrNotFound, "get "+s.schema.Singular)
		}
		return nil, apperr.Wrap(apperr.KindStore, err, "get "+s.schema.Singular)
	}
	return &item, nil
}

// Create validates input and inserts a new record.
func (s *ContentService[T, P]) Create(ctx context.Context, input CreateInput) (*T, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	var item T
	P(&item).Assign(db.ContentFields{
		Title:    input.Title,
		Image:    input.Image,
		Link:     s.linkValue(input.Link),
		IsActive: active,
	})

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "create "+s.schema.Singular)
	}

	s.invalidate(ctx)
	return &item, nil
}

// Update applies a partial update. updatedAt is refreshed even when the patch
// is empty.
func (s *ContentService[T, P]) Update(ctx context.Context, id string, patch Patch) (*T, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": s.now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Image != nil {
		updates[s.schema.ImageField] = *patch.Image
	}
	if patch.Link != nil && s.schema.HasLink {
		updates["link"] = *patch.Link
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	var model T
	if err := s.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, err, "update "+s.schema.Singular)
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete hard-deletes a record.
func (s *ContentService[T, P]) Delete(ctx context.Context, id string) error {
	var model T
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return apperr.Wrap(apperr.KindStore, result.Error, "delete "+s.schema.Singular)
	}
	if result.RowsAffected == 0 {
		return apperr.Wrap(apperr.KindNotFound, ErrNotFound, "delete "+s.schema.Singular)
	}

	s.invalidate(ctx)
	return nil
}

func (s *ContentService[T, P]) validateCreate(input CreateInput) error {
	var err error
	if s.schema.HasLink {
		err = validate.Struct(linkedRules{Title: input.Title, Image: input.Image, Link: input.Link})
	} else {
		err = validate.Struct(plainRules{Title: input.Title, Image: input.Image})
	}
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, ErrMissingRequiredFields, "validate "+s.schema.Singular)
	}
	return nil
}

func (s *ContentService[T, P]) linkValue(link string) string {
	if !s.schema.HasLink {
		return ""
	}
	return link
}

func (s *ContentService[T, P]) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil {
		s.stale.Store(true)
		s.warnCache(ctx, "content.cache_invalidate_failed", err)
	}
}

func (s *ContentService[T, P]) warnCache(ctx context.Context, msg string, err error) {
	ctx = s.log.WithFields(ctx, map[string]any{
		"collection": s.schema.Key,
		"error":      err.Error(),
	})
	s.log.Warn(ctx, msg)
}

// TrimmedInput returns input with surrounding whitespace removed from the text
// fields, as the admin forms submit them.
func TrimmedInput(input CreateInput) CreateInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Image = strings.TrimSpace(input.Image)
	input.Link = strings.TrimSpace(input.Link)
	return input
}
