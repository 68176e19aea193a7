package subscription

import (
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

func TestToggleFollowRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	following, err := svc.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	ok, err := svc.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// follow is one-way
	ok, err = svc.IsFollowing(b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	following, err = svc.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	ok, err = svc.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleFollowEdges(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	a := createTestUser(t, db, "a")

	_, err := svc.ToggleFollow(a.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.ToggleFollow(a.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFollowedBloggers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	reader := createTestUser(t, db, "reader")
	x := createTestUser(t, db, "x")
	y := createTestUser(t, db, "y")
	createTestUser(t, db, "z")

	_, err := svc.ToggleFollow(reader.ID, x.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(reader.ID, y.ID)
	require.NoError(t, err)

	users, err := svc.FollowedBloggers(reader.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	ids, err := svc.FollowerIDs(x.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reader.ID}, ids)
}

func TestFollowRoutesReplySubscribed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	svc := NewService(db)
	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	r := gin.New()
	stubAuth := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, a.ID)
		c.Next()
	}
	NewHandler(svc).RegisterRoutes(r.Group("/api"), stubAuth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/"+b.ID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscribed":true`)

	// the check route uses the same key as the category toggle
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/subscriptions/"+b.ID+"/check", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscribed":true`)
}

func TestToggleCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	u := createTestUser(t, db, "u")
	cat := models.CategoryModel{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&cat).Error)

	subscribed, err := svc.ToggleCategory(u.ID, cat.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	ids, err := svc.SubscribedCategoryIDs(u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, ids)

	cats, err := svc.SubscribedCategories(u.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Go", cats[0].Name)

	subscribed, err = svc.ToggleCategory(u.ID, cat.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	ids, err = svc.SubscribedCategoryIDs(u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = svc.ToggleCategory(u.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
