package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/apperr"
	"github.com/promodash/internal/metrics"
	"github.com/promodash/internal/service"
	"github.com/promodash/internal/view"
)

const (
	msgSelectImage  = "Please select an image"
	msgUploadFailed = "Failed to upload image"
)

// ShowList 渲染内容列表页
func (h *ContentHandler[T, P]) ShowList(c *gin.Context) {
	h.renderList(c, http.StatusOK, nil, "")
}

// ShowNew 渲染列表页并打开新建弹窗
func (h *ContentHandler[T, P]) ShowNew(c *gin.Context) {
	h.renderList(c, http.StatusOK, h.createForm(), "")
}

// ShowEdit 渲染列表页并打开编辑弹窗
func (h *ContentHandler[T, P]) ShowEdit(c *gin.Context) {
	id := idParam(c)
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.api.logError(c.Request.Context(), "admin.edit_load_failed", err, h.logFields(id))
		}
		h.renderList(c, apperr.StatusFor(err), nil, "Failed to fetch "+h.schema.Singular)
		return
	}

	record := P(item)
	fields := record.Fields()
	h.renderList(c, http.StatusOK, &view.Form{
		Action:   h.itemPath(id),
		ID:       id,
		Title:    fields.Title,
		Image:    fields.Image,
		Link:     fields.Link,
		IsActive: fields.IsActive,
	}, "")
}

// SubmitCreate 上传图片后创建记录
func (h *ContentHandler[T, P]) SubmitCreate(c *gin.Context) {
	ctx := c.Request.Context()
	form := h.createForm()
	input := h.readForm(c, form)

	file, err := c.FormFile(uploadField)
	if err != nil {
		h.renderList(c, http.StatusBadRequest, form, msgSelectImage)
		return
	}

	uploaded, err := h.api.saveUpload(ctx, file)
	if err != nil {
		h.renderUploadError(c, form, err)
		return
	}
	input.Image = uploaded.URL

	_, err = h.svc.Create(ctx, input)
	h.api.metrics.ObserveMutation(h.schema.Key, "create", err)
	if err != nil {
		message := h.schema.CreateFailed()
		if apperr.KindOf(err) == apperr.KindValidation {
			message = msgMissingFields
		} else {
			h.api.logError(ctx, "admin.create_failed", err, h.logFields(""))
		}
		h.renderList(c, apperr.StatusFor(err), form, message)
		return
	}

	h.redirectWithFlash(c, h.schema.Created())
}

// SubmitEdit 更新记录，未选择新图片时沿用原图
func (h *ContentHandler[T, P]) SubmitEdit(c *gin.Context) {
	ctx := c.Request.Context()
	id := idParam(c)

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		h.api.logError(ctx, "admin.update_failed", err, h.logFields(id))
		h.renderList(c, apperr.StatusFor(err), nil, h.schema.UpdateFailed())
		return
	}

	existing := P(item).Fields()
	form := &view.Form{Action: h.itemPath(id), ID: id, Image: existing.Image}
	input := h.readForm(c, form)
	image := existing.Image

	if file, err := c.FormFile(uploadField); err == nil {
		uploaded, err := h.api.saveUpload(ctx, file)
		if err != nil {
			h.renderUploadError(c, form, err)
			return
		}
		image = uploaded.URL
		form.Image = image
	}

	patch := service.Patch{
		Title:    &input.Title,
		Image:    &image,
		IsActive: input.IsActive,
	}
	if h.schema.HasLink {
		patch.Link = &input.Link
	}

	_, err = h.svc.Update(ctx, id, patch)
	h.api.metrics.ObserveMutation(h.schema.Key, "update", err)
	if err != nil {
		h.api.logError(ctx, "admin.update_failed", err, h.logFields(id))
		h.renderList(c, apperr.StatusFor(err), form, h.schema.UpdateFailed())
		return
	}

	h.redirectWithFlash(c, h.schema.Updated())
}

// SubmitDelete 删除记录后回到列表页
func (h *ContentHandler[T, P]) SubmitDelete(c *gin.Context) {
	id := idParam(c)
	err := h.svc.Delete(c.Request.Context(), id)
	h.api.metrics.ObserveMutation(h.schema.Key, "delete", err)
	if err != nil {
		h.api.logError(c.Request.Context(), "admin.delete_failed", err, h.logFields(id))
		h.redirectWithFlash(c, h.schema.DeleteFailed())
		return
	}

	h.redirectWithFlash(c, h.schema.Deleted())
}

func (h *ContentHandler[T, P]) createForm() *view.Form {
	return &view.Form{Action: adminPath(h.schema), IsActive: true}
}

func (h *ContentHandler[T, P]) itemPath(id string) string {
	return fmt.Sprintf("%s/%s", adminPath(h.schema), id)
}

// readForm copies the submitted values into form and returns the trimmed input.
func (h *ContentHandler[T, P]) readForm(c *gin.Context, form *view.Form) service.CreateInput {
	active := c.PostForm("isActive") != ""
	input := service.TrimmedInput(service.CreateInput{
		Title:    c.PostForm("title"),
		Link:     c.PostForm("link"),
		IsActive: &active,
	})

	form.Title = input.Title
	form.Link = input.Link
	form.IsActive = active
	return input
}

func (h *ContentHandler[T, P]) renderUploadError(c *gin.Context, form *view.Form, err error) {
	message := msgUploadFailed
	if typed := apperr.As(err); typed != nil && typed.Kind() == apperr.KindValidation {
		message = typed.Message()
	} else {
		h.api.logError(c.Request.Context(), "admin.upload_failed", err, h.logFields(form.ID))
	}
	h.api.metrics.ObserveUpload(uploadResult(err))
	h.renderList(c, apperr.StatusFor(err), form, message)
}

func (h *ContentHandler[T, P]) renderList(c *gin.Context, status int, form *view.Form, alert string) {
	ctx := c.Request.Context()
	items, err := h.svc.List(ctx)
	if err != nil {
		h.api.logError(ctx, "admin.list_failed", err, h.logFields(""))
		items = []T{}
	}

	pager := view.Paginate(len(items), pageQuery(c), h.api.pageSize)
	pageItems := view.PageOf(items, pager)
	rows := make([]view.Row, 0, len(pageItems))
	for i := range pageItems {
		record := P(&pageItems[i])
		fields := record.Fields()
		createdAt, updatedAt := record.Timestamps()
		rows = append(rows, view.Row{
			ID:        record.RecordID(),
			Title:     fields.Title,
			Image:     fields.Image,
			Link:      fields.Link,
			IsActive:  fields.IsActive,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}

	if form != nil {
		form.Action = withPage(form.Action, pager.Page)
	}

	c.HTML(status, view.ListTemplate, view.ListPage{
		Title:      h.schema.Title(),
		Label:      h.schema.Label,
		BasePath:   adminPath(h.schema),
		ImageLabel: h.schema.ImageLabel(),
		LinkLabel:  h.schema.LinkLabel,
		HasLink:    h.schema.HasLink,
		Nav:        h.api.navItems(h.schema.Key),
		Rows:       rows,
		Pager:      pager,
		Form:       form,
		Flash:      popFlash(c),
		Error:      alert,
	})
}

func (h *ContentHandler[T, P]) redirectWithFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		h.api.logError(c.Request.Context(), "admin.session_save_failed", err, nil)
	}
	c.Redirect(http.StatusSeeOther, withPage(adminPath(h.schema), pageQuery(c)))
}

func popFlash(c *gin.Context) string {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	_ = session.Save()

	messages := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if text, ok := flash.(string); ok && text != "" {
			messages = append(messages, text)
		}
	}
	return strings.Join(messages, " ")
}

func withPage(path string, page int) string {
	if page <= 1 {
		return path
	}
	return fmt.Sprintf("%s?page=%d", path, page)
}

func uploadResult(err error) string {
	if apperr.KindOf(err) == apperr.KindValidation {
		return metrics.ResultRejected
	}
	return metrics.ResultFailure
}
