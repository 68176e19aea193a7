package comment

import (
	"testing"
	"time"

	"github.com/quillspace/core/internal/database"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/modules/engagement"
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

func newTestService(db *gorm.DB) *Service {
	return NewService(db, engagement.NewService(db), nil)
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{Name: name, Email: name + "@test.dev", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestPost(t *testing.T, db *gorm.DB, authorID string, status models.PostStatus) *models.PostModel {
	t.Helper()
	p := &models.PostModel{Title: "post", Content: "body", Status: status, AuthorID: authorID}
	require.NoError(t, db.Create(p).Error)
	return p
}

func commentCount(t *testing.T, db *gorm.DB, postID string) int {
	t.Helper()
	var p models.PostModel
	require.NoError(t, db.First(&p, "id = ?", postID).Error)
	return p.CommentCount
}

func TestAddCommentBumpsCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	c, err := svc.Add(p.ID, author.ID, "great read, thanks for writing this up")
	require.NoError(t, err)
	assert.False(t, c.IsSpam)
	assert.Equal(t, 1, commentCount(t, db, p.ID))
}

func TestAddCommentOnDraftRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusDraft)

	_, err := svc.Add(p.ID, author.ID, "first!")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSpamHeuristic(t *testing.T) {
	// short and link-bearing is spam; either alone is not
	assert.True(t, isLikelySpam("http://sp.am"))
	assert.False(t, isLikelySpam("short note"))
	assert.False(t, isLikelySpam("this longer comment links to https://example.com but reads fine"))
}

func TestSpamFlagSetOnceAtCreation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	c, err := svc.Add(p.ID, author.ID, "https://x.yz")
	require.NoError(t, err)
	assert.True(t, c.IsSpam)

	// spam comments are stored, not dropped
	list, err := svc.ListByPost(p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsSpam)

	// editing the content does not clear the flag
	c, err = svc.Update(author.ID, c.ID, "actually here is my long thoughtful reply")
	require.NoError(t, err)

	var stored models.CommentModel
	require.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.IsSpam)
}

func TestListByPostNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	first, err := svc.Add(p.ID, author.ID, "came in early this morning")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Add(p.ID, author.ID, "arrived quite a bit later")
	require.NoError(t, err)

	list, err := svc.ListByPost(p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestDeleteCommentDropsCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	c, err := svc.Add(p.ID, author.ID, "will be gone soon enough")
	require.NoError(t, err)
	require.Equal(t, 1, commentCount(t, db, p.ID))

	require.NoError(t, svc.Delete(author.ID, c.ID))
	assert.Equal(t, 0, commentCount(t, db, p.ID))
}

func TestCommentOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "mallory")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	c, err := svc.Add(p.ID, author.ID, "mine, hands off please")
	require.NoError(t, err)

	_, err = svc.Update(other.ID, c.ID, "hijacked")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(other.ID, c.ID), apperr.ErrForbidden)

	_, err = svc.Update(author.ID, "00000000-0000-0000-0000-000000000000", "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListByAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	commenter := createTestUser(t, db, "bob")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	_, err := svc.Add(p.ID, commenter.ID, "one of my many comments")
	require.NoError(t, err)
	_, err = svc.Add(p.ID, author.ID, "replying on my own post")
	require.NoError(t, err)

	mine, err := svc.ListByAuthor(commenter.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListTolerantOfDeletedPost(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createTestUser(t, db, "alice")
	p := createTestPost(t, db, author.ID, models.StatusPublished)

	_, err := svc.Add(p.ID, author.ID, "left behind when the post goes")
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.PostModel{}, "id = ?", p.ID).Error)

	mine, err := svc.ListByAuthor(author.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].Post)
}
