package category

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/database"
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

func setupTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	noAuth := func(c *gin.Context) { c.Next() }
	NewHandler(NewService(db)).RegisterRoutes(r.Group("/api"), noAuth)
	return r
}

func TestCreateCategorySlugAndConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	cat, err := svc.Create("Tech Talk")
	require.NoError(t, err)
	assert.Equal(t, "tech-talk", cat.Slug)

	_, err = svc.Create("Tech Talk")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// a different name colliding on slug is also a conflict
	_, err = svc.Create("tech talk")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	a, err := svc.Create("Alpha")
	require.NoError(t, err)
	b, err := svc.Create("Beta")
	require.NoError(t, err)

	got, err := svc.Update(a.ID, "Gamma")
	require.NoError(t, err)
	assert.Equal(t, "gamma", got.Slug)

	_, err = svc.Update(a.ID, "Beta")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// renaming to its own current name is allowed
	_, err = svc.Update(b.ID, "Beta")
	assert.NoError(t, err)

	_, err = svc.Update("00000000-0000-0000-0000-000000000000", "Nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCategoryCleansUpLinks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	cat, err := svc.Create("Doomed")
	require.NoError(t, err)

	u := models.UserModel{Name: "u", Email: "u@test.dev", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	p := models.PostModel{Title: "p", Content: "x", Status: models.StatusPublished, AuthorID: u.ID}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Model(&p).Association("Categories").Append(cat))
	require.NoError(t, db.Create(&models.CategorySubscriptionModel{UserID: u.ID, CategoryID: cat.ID}).Error)

	require.NoError(t, svc.Delete(cat.ID))

	var links int64
	db.Table("post_categories").Where("category_id = ?", cat.ID).Count(&links)
	assert.Zero(t, links)

	var subs int64
	db.Model(&models.CategorySubscriptionModel{}).Where("category_id = ?", cat.ID).Count(&subs)
	assert.Zero(t, subs)

	// the post survives its category
	require.NoError(t, db.First(&p, "id = ?", p.ID).Error)
}

func TestCategoryEndpoints(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.CategoryModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "go", body.Data[0].Slug)
}
