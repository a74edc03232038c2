package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	configSvc "github.com/anoixa/taskboard/config/db"
	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/settings"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	manager := configSvc.NewManager(settings.NewRepository(database.NewGormProviderFromDB(db, "sqlite")), nil, 0, nil)
	h := NewSettingsHandler(manager, nil)

	router := gin.New()
	router.GET("/admin/settings/upload", h.GetUploadSettings)
	router.PUT("/admin/settings/upload", h.UpdateUploadSettings)
	return router
}

func doJSON(router *gin.Engine, method, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, "/admin/settings/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestGetUploadSettings_Defaults(t *testing.T) {
	router := setupRouter(t)

	w, body := doJSON(router, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	s := body["settings"].(map[string]interface{})
	assert.Equal(t, float64(10*1024*1024), s["max_file_size"])
	assert.Equal(t, true, s["enable_thumbnails"])
	assert.Equal(t, float64(150), s["thumbnail_size"])
}

func TestUpdateUploadSettings(t *testing.T) {
	router := setupRouter(t)

	w, body := doJSON(router, http.MethodPut, `{"thumbnail_size": 200, "allowed_extensions": ".PNG, pdf"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Settings updated", body["message"])

	w, body = doJSON(router, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	s := body["settings"].(map[string]interface{})
	assert.Equal(t, float64(200), s["thumbnail_size"])
	assert.Equal(t, []interface{}{"png", "pdf"}, s["allowed_extensions"])
	// 未出现的键保持原值
	assert.Equal(t, float64(1920), s["image_max_width"])
}

func TestUpdateUploadSettings_Invalid(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"not json", `thumbnail_size=1`},
		{"quality out of range", `{"image_quality": 0}`},
		{"thumbnail too large", `{"thumbnail_size": 4096}`},
		{"wrong type", `{"image_max_width": "wide"}`},
		{"unknown key", `{"thumbnail_sise": 100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(router, http.MethodPut, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, false, body["success"])
		})
	}

	_, body := doJSON(router, http.MethodGet, "")
	s := body["settings"].(map[string]interface{})
	assert.Equal(t, float64(85), s["image_quality"])
}
