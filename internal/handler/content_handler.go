package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/apperr"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/service"
)

const msgMissingFields = "Missing required fields"

// contentRequest is decoded once per request. Pointer fields distinguish an
// omitted field from an empty one.
type contentRequest struct {
	Title     *string `json:"title"`
	Image     *string `json:"image"`
	Thumbnail *string `json:"thumbnail"`
	Link      *string `json:"link"`
	IsActive  *bool   `json:"isActive"`
}

func (r contentRequest) image(schema service.Schema) *string {
	if schema.ImageField == "thumbnail" {
		return r.Thumbnail
	}
	return r.Image
}

func (r contentRequest) toCreateInput(schema service.Schema) service.CreateInput {
	return service.CreateInput{
		Title:    deref(r.Title),
		Image:    deref(r.image(schema)),
		Link:     deref(r.Link),
		IsActive: r.IsActive,
	}
}

func (r contentRequest) toPatch(schema service.Schema) service.Patch {
	return service.Patch{
		Title:    r.Title,
		Image:    r.image(schema),
		Link:     r.Link,
		IsActive: r.IsActive,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// ContentHandler serves the JSON API and the admin pages of one collection.
type ContentHandler[T any, P db.Record[T]] struct {
	api    *API
	svc    *service.ContentService[T, P]
	schema service.Schema
}

func newContentHandler[T any, P db.Record[T]](api *API, svc *service.ContentService[T, P]) *ContentHandler[T, P] {
	return &ContentHandler[T, P]{api: api, svc: svc, schema: svc.Schema()}
}

func (h *ContentHandler[T, P]) Schema() service.Schema {
	return h.schema
}

func (h *ContentHandler[T, P]) logFields(id string) map[string]any {
	fields := map[string]any{"collection": h.schema.Key}
	if id != "" {
		fields["id"] = id
	}
	return fields
}

// List returns every record, newest first.
func (h *ContentHandler[T, P]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.api.logError(c.Request.Context(), "content.list_failed", err, h.logFields(""))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   h.schema.FetchFailed(),
			"details": apperr.Cause(err),
			"data":    []T{},
		})
		return
	}

	respondData(c, http.StatusOK, items)
}

// Get returns a single record.
func (h *ContentHandler[T, P]) Get(c *gin.Context) {
	id := idParam(c)
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.api.logError(c.Request.Context(), "content.get_failed", err, h.logFields(id))
		}
		respondFailure(c, apperr.StatusFor(err), "Failed to fetch "+h.schema.Singular, err)
		return
	}

	respondData(c, http.StatusOK, item)
}

// Create inserts a record after checking the required fields.
func (h *ContentHandler[T, P]) Create(c *gin.Context) {
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req.toCreateInput(h.schema))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			respondError(c, http.StatusBadRequest, msgMissingFields)
			return
		}
		h.api.metrics.ObserveMutation(h.schema.Key, "create", err)
		h.api.logError(c.Request.Context(), "content.create_failed", err, h.logFields(""))
		respondFailure(c, apperr.StatusFor(err), h.schema.CreateFailed(), err)
		return
	}

	h.api.metrics.ObserveMutation(h.schema.Key, "create", nil)
	respondData(c, h.schema.CreateStatus, item)
}

// Update applies the supplied fields only.
func (h *ContentHandler[T, P]) Update(c *gin.Context) {
	id := idParam(c)
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, req.toPatch(h.schema))
	h.api.metrics.ObserveMutation(h.schema.Key, "update", err)
	if err != nil {
		h.api.logError(c.Request.Context(), "content.update_failed", err, h.logFields(id))
		respondFailure(c, apperr.StatusFor(err), h.schema.UpdateFailed(), err)
		return
	}

	respondData(c, http.StatusOK, item)
}

// Delete removes a record permanently.
func (h *ContentHandler[T, P]) Delete(c *gin.Context) {
	id := idParam(c)
	err := h.svc.Delete(c.Request.Context(), id)
	h.api.metrics.ObserveMutation(h.schema.Key, "delete", err)
	if err != nil {
		h.api.logError(c.Request.Context(), "content.delete_failed", err, h.logFields(id))
		respondFailure(c, apperr.StatusFor(err), h.schema.DeleteFailed(), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": h.schema.Deleted()})
}
