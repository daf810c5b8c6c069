package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/router"
	"github.com/promodash/internal/storage"
)

type e2eSuite struct {
	handler   http.Handler
	api       httpClient
	browser   httpClient
	baseURL   string
	uploadDir string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
	Message string          `json:"message"`
	URL     string          `json:"url"`
}

type collectionCase struct {
	path         string
	imageField   string
	hasLink      bool
	createStatus int
	label        string
}

var collections = []collectionCase{
	{path: "/api/banners", imageField: "image", hasLink: true, createStatus: http.StatusOK, label: "Banner"},
	{path: "/api/gallery/images", imageField: "image", hasLink: true, createStatus: http.StatusOK, label: "Gallery image"},
	{path: "/api/gallery/videos", imageField: "thumbnail", hasLink: true, createStatus: http.StatusOK, label: "Gallery video"},
	{path: "/api/medias", imageField: "image", hasLink: false, createStatus: http.StatusCreated, label: "Media"},
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("spring sale scenario", suite.testSpringSale)
	t.Run("collections crud", suite.testCollections)
	t.Run("upload validation", suite.testUploadValidation)
	t.Run("admin form workflow", suite.testAdminForms)
	t.Run("admin pagination", suite.testAdminPagination)
	t.Run("system endpoints", suite.testSystemEndpoints)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(db.Options{
		Driver: db.DriverSQLite,
		Path:   fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	uploadDir := t.TempDir()
	engine, err := router.SetupRouter(router.Options{
		DB:            gdb,
		Store:         storage.NewLocalStore(uploadDir, "/uploads"),
		UploadDir:     uploadDir,
		UploadURLPath: "/uploads",
		SessionSecret: "test-session-secret",
	})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	return &e2eSuite{
		handler:   engine,
		api:       newLocalClient(engine, false),
		browser:   newLocalClient(engine, true),
		baseURL:   "http://example.test",
		uploadDir: uploadDir,
	}
}

func (s *e2eSuite) testSpringSale(t *testing.T) {
	resp := s.upload(t, "a.png", "image/png", testPNG(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var uploaded envelope
	decodeJSON(t, resp, &uploaded)
	if !regexp.MustCompile(`^/uploads/\d+-a\.png$`).MatchString(uploaded.URL) {
		t.Fatalf("unexpected upload url %q", uploaded.URL)
	}

	served := s.mustRequest(t, s.api, http.MethodGet, uploaded.URL, nil, nil)
	if served.StatusCode != http.StatusOK {
		t.Fatalf("uploaded file should be served, got %d", served.StatusCode)
	}
	if got := readBody(t, served); got != string(testPNG(t)) {
		t.Fatalf("served bytes differ from upload")
	}

	resp = s.mustRequestJSON(t, s.api, http.MethodPost, "/api/banners", map[string]interface{}{
		"title": "Spring Sale",
		"image": uploaded.URL,
		"link":  "https://example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create banner expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.api, http.MethodGet, "/api/banners", nil, nil)
	var listed envelope
	decodeJSON(t, resp, &listed)
	var banners []db.Banner
	if err := json.Unmarshal(listed.Data, &banners); err != nil {
		t.Fatalf("failed to decode banners: %v", err)
	}
	if len(banners) == 0 {
		t.Fatalf("expected at least one banner")
	}
	first := banners[0]
	if first.Title != "Spring Sale" || first.Image != uploaded.URL || first.Link != "https://example.com" || !first.IsActive {
		t.Fatalf("unexpected first banner %+v", first)
	}
}

func (s *e2eSuite) testCollections(t *testing.T) {
	for _, tc := range collections {
		payload := map[string]interface{}{
			"title":       "Item for " + tc.path,
			tc.imageField: "/uploads/1-item.png",
			"isActive":    false,
		}
		if tc.hasLink {
			payload["link"] = "https://example.com/item"
		}

		resp := s.mustRequestJSON(t, s.api, http.MethodPost, tc.path, payload)
		if resp.StatusCode != tc.createStatus {
			t.Fatalf("%s create expected %d, got %d: %s", tc.path, tc.createStatus, resp.StatusCode, readBody(t, resp))
		}
		var created envelope
		decodeJSON(t, resp, &created)
		var record map[string]interface{}
		if err := json.Unmarshal(created.Data, &record); err != nil {
			t.Fatalf("%s decode record: %v", tc.path, err)
		}
		id, _ := record["id"].(string)
		if id == "" || record["isActive"] != false || record[tc.imageField] != "/uploads/1-item.png" {
			t.Fatalf("%s unexpected record %v", tc.path, record)
		}

		resp = s.mustRequestJSON(t, s.api, http.MethodPost, tc.path, map[string]interface{}{"title": "incomplete"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s missing fields expected 400, got %d", tc.path, resp.StatusCode)
		}
		var invalid envelope
		decodeJSON(t, resp, &invalid)
		if invalid.Success || invalid.Error != "Missing required fields" {
			t.Fatalf("%s unexpected validation envelope %+v", tc.path, invalid)
		}

		resp = s.mustRequestJSON(t, s.api, http.MethodPatch, tc.path+"/"+id, map[string]interface{}{"isActive": true})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s update expected 200, got %d", tc.path, resp.StatusCode)
		}
		var updated envelope
		decodeJSON(t, resp, &updated)
		var updatedRecord map[string]interface{}
		if err := json.Unmarshal(updated.Data, &updatedRecord); err != nil {
			t.Fatalf("%s decode update: %v", tc.path, err)
		}
		if updatedRecord["isActive"] != true || updatedRecord["title"] != payload["title"] {
			t.Fatalf("%s partial update changed unrelated fields: %v", tc.path, updatedRecord)
		}

		resp = s.mustRequest(t, s.api, http.MethodDelete, tc.path+"/"+id, nil, nil)
		var deleted envelope
		decodeJSON(t, resp, &deleted)
		if !deleted.Success || deleted.Message != tc.label+" deleted successfully" {
			t.Fatalf("%s unexpected delete envelope %+v", tc.path, deleted)
		}

		resp = s.mustRequest(t, s.api, http.MethodDelete, tc.path+"/"+id, nil, nil)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s deleting twice expected 500, got %d", tc.path, resp.StatusCode)
		}
		var failed envelope
		decodeJSON(t, resp, &failed)
		if failed.Success || !strings.HasPrefix(failed.Error, "Failed to delete") || failed.Details == "" {
			t.Fatalf("%s unexpected failure envelope %+v", tc.path, failed)
		}
	}
}

func (s *e2eSuite) testUploadValidation(t *testing.T) {
	before := countFiles(t, s.uploadDir)

	resp := s.upload(t, "notes.txt", "text/plain", []byte("not an image"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-image upload expected 400, got %d", resp.StatusCode)
	}
	var rejected envelope
	decodeJSON(t, resp, &rejected)
	if rejected.Error != "File must be an image" {
		t.Fatalf("unexpected error %q", rejected.Error)
	}
	if after := countFiles(t, s.uploadDir); after != before {
		t.Fatalf("rejected upload must not write files (%d -> %d)", before, after)
	}

	resp = s.mustRequest(t, s.api, http.MethodPost, "/api/upload", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty upload expected 400, got %d", resp.StatusCode)
	}
	var empty envelope
	decodeJSON(t, resp, &empty)
	if empty.Error != "Empty request body" {
		t.Fatalf("unexpected error %q", empty.Error)
	}
}

func (s *e2eSuite) testAdminForms(t *testing.T) {
	body, contentType := multipartForm(t, map[string]string{
		"title":    "Logo",
		"isActive": "true",
	}, "file", "logo.png", "image/png", testPNG(t))
	resp := s.mustRequest(t, s.browser, http.MethodPost, "/admin/medias", body, map[string]string{"Content-Type": contentType})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("admin create expected 303, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/medias" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	resp = s.mustRequest(t, s.browser, http.MethodGet, "/admin/medias", nil, nil)
	page := readBody(t, resp)
	if !strings.Contains(page, "Media created successfully") || !strings.Contains(page, "Logo") {
		t.Fatalf("list page should show the flash and the new row")
	}

	body, contentType = multipartForm(t, map[string]string{"title": "No file"}, "", "", "", nil)
	resp = s.mustRequest(t, s.browser, http.MethodPost, "/admin/medias", body, map[string]string{"Content-Type": contentType})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("admin create without file expected 400, got %d", resp.StatusCode)
	}
	page = readBody(t, resp)
	if !strings.Contains(page, "Please select an image") || !strings.Contains(page, `value="No file"`) {
		t.Fatalf("form should stay open with the entered values and an alert")
	}
}

func (s *e2eSuite) testAdminPagination(t *testing.T) {
	for i := 0; i < 9; i++ {
		resp := s.mustRequestJSON(t, s.api, http.MethodPost, "/api/gallery/images", map[string]interface{}{
			"title": fmt.Sprintf("Photo %d", i),
			"image": "/uploads/1-p.png",
			"link":  "https://example.com/p",
		})
		resp.Body.Close()
	}

	resp := s.mustRequest(t, s.browser, http.MethodGet, "/admin/gallery/images?page=2", nil, nil)
	page := readBody(t, resp)
	if rows := strings.Count(page, "data-id="); rows != 1 {
		t.Fatalf("page 2 expected 1 row, got %d", rows)
	}

	resp = s.mustRequest(t, s.browser, http.MethodGet, "/admin/gallery/images", nil, nil)
	page = readBody(t, resp)
	if rows := strings.Count(page, "data-id="); rows != 8 {
		t.Fatalf("page 1 expected 8 rows, got %d", rows)
	}
}

func (s *e2eSuite) testSystemEndpoints(t *testing.T) {
	resp := s.mustRequest(t, s.api, http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = s.mustRequest(t, s.api, http.MethodGet, "/", nil, nil)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/banners" {
		t.Fatalf("root should redirect to the banners page, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartForm(t *testing.T, fields map[string]string, fileField, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if fileField != "" {
		partHeader := textproto.MIMEHeader{}
		partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, filename))
		partHeader.Set("Content-Type", contentType)
		part, err := writer.CreatePart(partHeader)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func (s *e2eSuite) upload(t *testing.T, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	body, formType := multipartForm(t, nil, "file", filename, contentType, data)
	return s.mustRequest(t, s.api, http.MethodPost, "/api/upload", body, map[string]string{"Content-Type": formType})
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read upload dir: %v", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) != "" {
			count++
		}
	}
	return count
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
