package user

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/database"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{Name: name, Email: name + "@test.dev", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// setupTestRouter stubs auth by pinning the user id into the context.
func setupTestRouter(t *testing.T, db *gorm.DB, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	asUser := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	}
	NewHandler(NewService(db, nil, nil)).RegisterRoutes(r.Group("/api"), asUser)
	return r
}

func TestGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil, nil)

	_, err := svc.GetByID("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	r := setupTestRouter(t, db, u.ID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("bio", "gopher"))
	require.NoError(t, mw.WriteField("links[github]", "https://github.com/alice"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/updateprofile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.UserModel
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, "gopher", got.Bio)
	assert.Equal(t, "https://github.com/alice", got.Links.Github)
	// untouched fields stay put
	assert.Equal(t, "alice", got.Name)
}

func TestPublicProfile(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	r := setupTestRouter(t, db, u.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/"+u.ID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["name"])
	// the password hash never leaves the server
	_, leaked := body["password"]
	assert.False(t, leaked)
}
