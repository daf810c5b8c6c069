package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/promodash/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListBanners(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/banners", map[string]any{
		"title": "Spring Sale",
		"image": "/uploads/123-a.png",
		"link":  "https://example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeEnvelope(t, rec)
	assert.True(t, created.Success)
	var banner db.Banner
	require.NoError(t, json.Unmarshal(created.Data, &banner))
	assert.NotEmpty(t, banner.ID)
	assert.True(t, banner.IsActive)

	rec = env.doJSON(t, http.MethodGet, "/api/banners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeEnvelope(t, rec)
	var banners []db.Banner
	require.NoError(t, json.Unmarshal(listed.Data, &banners))
	require.Len(t, banners, 1)
	assert.Equal(t, "Spring Sale", banners[0].Title)
	assert.Equal(t, "/uploads/123-a.png", banners[0].Image)
	assert.Equal(t, "https://example.com", banners[0].Link)

	rec = env.doJSON(t, http.MethodGet, "/api/banners/"+banner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isActive":true`)
}

func TestListEmptyCollectionReturnsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/gallery/images", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestCreateRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/banners", map[string]any{
		"title": "No image",
		"link":  "https://example.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing required fields"}`, rec.Body.String())

	var count int64
	require.NoError(t, env.db.Model(&db.Banner{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/medias", `{"title":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeEnvelope(t, rec).Error)
}

func TestCreateMediaReturnsCreatedWithoutLink(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/medias", map[string]any{
		"title":    "Logo",
		"image":    "/uploads/1-logo.png",
		"isActive": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var media db.Media
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &media))
	assert.Equal(t, "Logo", media.Title)
	assert.False(t, media.IsActive)
}

func TestGalleryVideoUsesThumbnailField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/gallery/videos", map[string]any{
		"title": "Trailer",
		"image": "/uploads/ignored.png",
		"link":  "https://video.example.com/1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, "image is not the thumbnail field")

	rec = env.doJSON(t, http.MethodPost, "/api/gallery/videos", map[string]any{
		"title":     "Trailer",
		"thumbnail": "/uploads/1-t.png",
		"link":      "https://video.example.com/1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"thumbnail":"/uploads/1-t.png"`)
}

func TestUpdateIsPartial(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/gallery/images", map[string]any{
		"title": "Hall",
		"image": "/uploads/1-h.png",
		"link":  "https://example.com/h",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created db.GalleryImage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	rec = env.doJSON(t, http.MethodPatch, "/api/gallery/images/"+created.ID, map[string]any{"title": "Lobby"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated db.GalleryImage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &updated))
	assert.Equal(t, "Lobby", updated.Title)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.Link, updated.Link)
	assert.Equal(t, created.IsActive, updated.IsActive)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateUnknownIDReturnsFailureEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPatch, "/api/banners/missing", map[string]any{"title": "x"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to update banner", body.Error)
	assert.Equal(t, "record not found", body.Details)
}

func TestDeleteBanner(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/banners", map[string]any{
		"title": "Gone soon",
		"image": "/uploads/1-g.png",
		"link":  "https://example.com/g",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created db.Banner
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	rec = env.doJSON(t, http.MethodDelete, "/api/banners/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Banner deleted successfully"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodGet, "/api/banners", nil)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodDelete, "/api/banners/"+created.ID, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to delete banner", decodeEnvelope(t, rec).Error)
}

func TestListStoreFailureReturnsEmptyData(t *testing.T) {
	env := newTestEnv(t)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := env.doJSON(t, http.MethodGet, "/api/medias", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to fetch media", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.Equal(t, []any{}, body["data"])
}
