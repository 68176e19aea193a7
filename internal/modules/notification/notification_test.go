package notification

import (
	"testing"

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

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{Name: name, Email: name + "@test.dev", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestNotifyLandsInOwnInboxOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	require.NoError(t, svc.Notify(&models.NotificationModel{
		UserID:  a.ID,
		Type:    models.NotificationPostPublished,
		Message: "new post",
	}))

	inbox, err := svc.Inbox(a.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.False(t, inbox[0].IsRead)

	inbox, err = svc.Inbox(b.ID)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestMarkReadOnlyRecipient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	n := models.NotificationModel{UserID: owner.ID, Type: models.NotificationNewComment, Message: "hey"}
	require.NoError(t, svc.Notify(&n))

	_, err := svc.MarkRead(other.ID, n.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := svc.MarkRead(owner.ID, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	// second mark is a no-op
	got, err = svc.MarkRead(owner.ID, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	_, err = svc.MarkRead(owner.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
