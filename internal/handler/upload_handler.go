package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/apperr"
	"github.com/promodash/internal/metrics"
	"github.com/promodash/internal/storage"
)

const (
	uploadField      = "file"
	msgEmptyBody     = "Empty request body"
	msgNoFile        = "No file or invalid file provided"
	msgNotImage      = "File must be an image"
	msgUploadSuccess = "File uploaded successfully"
)

// UploadImage 处理图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		a.metrics.ObserveUpload(metrics.ResultRejected)
		respondError(c, http.StatusBadRequest, msgEmptyBody)
		return
	}

	file, err := c.FormFile(uploadField)
	if err != nil {
		a.metrics.ObserveUpload(metrics.ResultRejected)
		respondError(c, http.StatusBadRequest, msgNoFile)
		return
	}

	result, err := a.saveUpload(c.Request.Context(), file)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			a.metrics.ObserveUpload(metrics.ResultRejected)
			respondError(c, http.StatusBadRequest, msgNotImage)
			return
		}
		a.metrics.ObserveUpload(metrics.ResultFailure)
		a.logError(c.Request.Context(), "upload.failed", err, map[string]any{"filename": file.Filename})
		respondError(c, http.StatusInternalServerError, apperr.Cause(err))
		return
	}

	a.metrics.ObserveUpload(metrics.ResultSuccess)
	body := gin.H{
		"success": true,
		"url":     result.URL,
		"message": msgUploadSuccess,
	}
	if result.Width > 0 && result.Height > 0 {
		body["width"] = result.Width
		body["height"] = result.Height
	}
	c.JSON(http.StatusOK, body)
}

// saveUpload checks the declared content type and stores the file bytes.
func (a *API) saveUpload(ctx context.Context, file *multipart.FileHeader) (storage.Result, error) {
	contentType := file.Header.Get("Content-Type")
	if !storage.IsImageContentType(contentType) {
		return storage.Result{}, apperr.New(apperr.KindValidation, msgNotImage)
	}

	src, err := file.Open()
	if err != nil {
		return storage.Result{}, apperr.Wrap(apperr.KindStorage, err, "open upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return storage.Result{}, apperr.Wrap(apperr.KindStorage, err, "read upload")
	}

	result, err := storage.Put(ctx, a.store, a.now(), file.Filename, contentType, data)
	if err != nil {
		return storage.Result{}, apperr.Wrap(apperr.KindStorage, err, fmt.Sprintf("store %s", file.Filename))
	}
	return result, nil
}
