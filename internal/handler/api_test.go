package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/storage"
	"github.com/promodash/internal/view"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.UnixMilli(1700000000000)

type testEnv struct {
	db        *gorm.DB
	api       *API
	engine    *gin.Engine
	uploadDir string
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := setupHandlerTestDB(t)
	uploadDir := t.TempDir()
	api := NewAPI(gdb, storage.NewLocalStore(uploadDir, "/uploads"), Options{})
	api.now = func() time.Time { return fixedNow }

	tmpl, err := view.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.Use(Recovery(nil), RequestID(nil))
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.SetHTMLTemplate(tmpl)

	r.POST("/api/upload", api.UploadImage)
	r.GET("/healthz", api.HealthCheck)
	for _, res := range api.Resources() {
		base := "/" + res.Schema().Collection
		r.GET("/api"+base, res.List)
		r.POST("/api"+base, res.Create)
		r.GET("/api"+base+"/:id", res.Get)
		r.PATCH("/api"+base+"/:id", res.Update)
		r.DELETE("/api"+base+"/:id", res.Delete)

		r.GET("/admin"+base, res.ShowList)
		r.GET("/admin"+base+"/new", res.ShowNew)
		r.GET("/admin"+base+"/:id/edit", res.ShowEdit)
		r.POST("/admin"+base, res.SubmitCreate)
		r.POST("/admin"+base+"/:id", res.SubmitEdit)
		r.POST("/admin"+base+"/:id/delete", res.SubmitDelete)
	}

	return &testEnv{db: gdb, api: api, engine: r, uploadDir: uploadDir}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
	Message string          `json:"message"`
	URL     string          `json:"url"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
