package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/modules/engagement"
	"github.com/quillspace/core/internal/modules/notification"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/markdown"
	"github.com/quillspace/core/internal/pkg/pagination"
	"github.com/quillspace/core/internal/pkg/response"
	slugpkg "github.com/quillspace/core/internal/pkg/slug"
	"github.com/quillspace/core/internal/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const excerptLength = 200

// CreatePostDTO carries a new post. Categories and Tags are free-form names.
// An empty Excerpt is derived from the content.
type CreatePostDTO struct {
	Title      string
	Excerpt    string
	Content    string
	Status     models.PostStatus
	Categories []string
	Tags       []string
	Banner     *uploadedFile
}

// UpdatePostDTO carries a partial edit. Nil fields are left untouched.
type UpdatePostDTO struct {
	Title      *string
	Excerpt    *string
	Content    *string
	Status     *models.PostStatus
	Categories []string
	Tags       []string
	Banner     *uploadedFile
}

type uploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ListQuery narrows the public post listing.
type ListQuery struct {
	Q        string // title text search
	Category string // category slug
	Tag      string
	Author   string // author id
}

// Service handles the post lifecycle.
type Service struct {
	db      *gorm.DB
	notify  *notification.Service
	eng     *engagement.Service
	storage storage.ObjectStorage
	logger  *zap.Logger

	defaultBannerURL string
}

func NewService(db *gorm.DB, notify *notification.Service, eng *engagement.Service, store storage.ObjectStorage, defaultBannerURL string, logger *zap.Logger) *Service {
	return &Service{
		db:               db,
		notify:           notify,
		eng:              eng,
		storage:          store,
		logger:           logger,
		defaultBannerURL: defaultBannerURL,
	}
}

// Create inserts a post and notifies the author. The notification type
// follows the post's resulting status.
func (s *Service) Create(ctx context.Context, authorID string, dto *CreatePostDTO) (*models.PostModel, error) {
	if strings.TrimSpace(dto.Title) == "" || strings.TrimSpace(dto.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperr.ErrInvalidInput)
	}
	status := dto.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrInvalidInput, dto.Status)
	}

	cats, err := s.resolveCategories(dto.Categories)
	if err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(dto.Excerpt)
	if excerpt == "" {
		excerpt = markdown.Excerpt(dto.Content, excerptLength)
	}

	post := models.PostModel{
		Title:      dto.Title,
		Content:    dto.Content,
		Excerpt:    excerpt,
		Status:     status,
		AuthorID:   authorID,
		Categories: cats,
		Tags:       normalizeList(dto.Tags),
		Banner:     s.storeBanner(ctx, dto.Banner),
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	s.syncTagRows(&post)

	s.emitLifecycleNotification(&post)
	return s.GetByID(post.ID, post.AuthorID)
}

// Update applies a partial edit to the author's own post. Saving re-emits
// the lifecycle notification for the resulting status, even when the status
// did not change.
func (s *Service) Update(ctx context.Context, authorID, id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	post, err := s.getOwned(authorID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperr.ErrInvalidInput)
		}
		updates["title"] = *dto.Title
		post.Title = *dto.Title
	}
	if dto.Content != nil {
		updates["content"] = *dto.Content
		post.Content = *dto.Content
		if dto.Excerpt == nil {
			updates["excerpt"] = markdown.Excerpt(*dto.Content, excerptLength)
			post.Excerpt = updates["excerpt"].(string)
		}
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = *dto.Excerpt
		post.Excerpt = *dto.Excerpt
	}
	if dto.Status != nil {
		if !dto.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrInvalidInput, *dto.Status)
		}
		updates["status"] = *dto.Status
		post.Status = *dto.Status
	}
	if dto.Tags != nil {
		tags := normalizeList(dto.Tags)
		updates["tags"] = tags
		post.Tags = tags
	}
	if dto.Banner != nil {
		url := s.storeBanner(ctx, dto.Banner)
		updates["banner"] = url
		post.Banner = url
	}

	if len(updates) > 0 {
		if err := s.db.Model(post).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if dto.Categories != nil {
		cats, err := s.resolveCategories(dto.Categories)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(post).Association("Categories").Replace(cats); err != nil {
			return nil, err
		}
		post.Categories = cats
	}
	if dto.Tags != nil {
		s.syncTagRows(post)
	}

	s.emitLifecycleNotification(post)
	return s.GetByID(post.ID, post.AuthorID)
}

// Unpublish demotes a post to draft. Already-draft posts are saved again
// unchanged, which re-emits the draft notification.
func (s *Service) Unpublish(authorID, id string) (*models.PostModel, error) {
	post, err := s.getOwned(authorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(post).Update("status", models.StatusDraft).Error; err != nil {
		return nil, err
	}
	post.Status = models.StatusDraft

	s.emitLifecycleNotification(post)
	return s.GetByID(post.ID, post.AuthorID)
}

// Delete removes the author's post along with its tag rows and category
// links. Comments are left behind; readers treat the missing post as a
// dangling reference and skip it.
func (s *Service) Delete(authorID, id string) error {
	if !models.IsValidID(id) {
		return fmt.Errorf("%w: malformed post id", apperr.ErrInvalidInput)
	}
	post, err := s.getOwned(authorID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.TagModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(post).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// List returns published posts, newest first.
func (s *Service) List(q pagination.Query, lq ListQuery) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).
		Preload("Author").
		Preload("Categories").
		Where("posts.status = ?", models.StatusPublished).
		Order("posts.created_at DESC")

	if lq.Q != "" {
		tx = tx.Where("LOWER(posts.title) LIKE ?", "%"+strings.ToLower(lq.Q)+"%")
	}
	if lq.Category != "" {
		tx = tx.Joins("JOIN post_categories pc ON pc.post_id = posts.id").
			Joins("JOIN categories ON categories.id = pc.category_id").
			Where("categories.slug = ?", lq.Category).
			Distinct("posts.*")
	}
	if lq.Tag != "" {
		// tags is a JSON array of strings; a quoted LIKE keeps this portable
		tx = tx.Where("posts.tags LIKE ?", fmt.Sprintf(`%%%q%%`, lq.Tag))
	}
	if lq.Author != "" {
		tx = tx.Where("posts.author_id = ?", lq.Author)
	}

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts)
	s.backfillBanners(posts)
	return posts, pag, err
}

// MyPosts returns all of the author's posts regardless of status.
func (s *Service) MyPosts(authorID string, q pagination.Query) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).
		Preload("Categories").
		Where("author_id = ?", authorID).
		Order("created_at DESC")

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts)
	s.backfillBanners(posts)
	return posts, pag, err
}

// GetByID fetches a single post. Drafts are only visible to their author,
// identified by viewerID.
func (s *Service) GetByID(id, viewerID string) (*models.PostModel, error) {
	var post models.PostModel
	err := s.db.Preload("Author").Preload("Categories").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if post.Status != models.StatusPublished && post.AuthorID != viewerID {
		return nil, apperr.ErrNotFound
	}
	if post.Banner == "" {
		post.Banner = s.defaultBannerURL
	}
	return &post, nil
}

// Fetch is the public single-post read path. Every successful fetch counts
// as a view, no matter who asks or how often.
func (s *Service) Fetch(id, viewerID string) (*models.PostModel, error) {
	post, err := s.GetByID(id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.eng.RecordView(post.ID); err != nil {
		if s.logger != nil {
			s.logger.Warn("view counter bump failed", zap.String("post", post.ID), zap.Error(err))
		}
		return post, nil
	}
	post.ViewCount++
	return post, nil
}

// UploadEditorImage stores an inline editor image and returns its URL.
func (s *Service) UploadEditorImage(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("no object storage configured")
	}
	key := storage.BuildObjectKey("editor", name)
	return s.storage.Store(ctx, key, data, contentType)
}

// getOwned loads a post and enforces ownership. Missing posts map to not
// found; someone else's post maps to forbidden.
func (s *Service) getOwned(authorID, id string) (*models.PostModel, error) {
	var post models.PostModel
	if err := s.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, apperr.ErrForbidden
	}
	return &post, nil
}

func (s *Service) resolveCategories(names []string) ([]models.CategoryModel, error) {
	cats := make([]models.CategoryModel, 0, len(names))
	seen := map[string]bool{}
	for _, name := range normalizeList(names) {
		if seen[name] {
			continue
		}
		seen[name] = true
		var cat models.CategoryModel
		err := s.db.Where("name = ?", name).First(&cat).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			cat = models.CategoryModel{Name: name, Slug: slugpkg.Make(name)}
			if err := s.db.Create(&cat).Error; err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// syncTagRows mirrors the post's tag list into per-post tag rows. Failures
// are logged and swallowed since the canonical list lives on the post.
func (s *Service) syncTagRows(post *models.PostModel) {
	if err := s.db.Where("post_id = ?", post.ID).Delete(&models.TagModel{}).Error; err != nil {
		if s.logger != nil {
			s.logger.Warn("tag row cleanup failed", zap.String("post", post.ID), zap.Error(err))
		}
		return
	}
	for _, name := range post.Tags {
		row := models.TagModel{Name: name, PostID: post.ID}
		if err := s.db.Create(&row).Error; err != nil && s.logger != nil {
			s.logger.Warn("tag row insert failed", zap.String("post", post.ID), zap.Error(err))
		}
	}
}

// emitLifecycleNotification records one status notification addressed to
// the author. A failed insert is logged and never fails the save.
func (s *Service) emitLifecycleNotification(post *models.PostModel) {
	if s.notify == nil {
		return
	}

	ntype := models.NotificationPostDraft
	message := fmt.Sprintf("Your post %q was saved as a draft", post.Title)
	if post.Status == models.StatusPublished {
		ntype = models.NotificationPostPublished
		message = fmt.Sprintf("Your post %q was published", post.Title)
	}

	postID := post.ID
	n := models.NotificationModel{
		UserID:        post.AuthorID,
		Type:          ntype,
		Message:       message,
		RelatedPostID: &postID,
	}
	if err := s.notify.Notify(&n); err != nil && s.logger != nil {
		s.logger.Warn("notification insert failed", zap.String("post", post.ID), zap.Error(err))
	}
}

func (s *Service) storeBanner(ctx context.Context, file *uploadedFile) string {
	if file == nil {
		return s.defaultBannerURL
	}
	key := storage.BuildObjectKey("banners", file.Name)
	return storage.StoreOrDefault(ctx, s.storage, s.logger, key, file.Data, file.ContentType, s.defaultBannerURL)
}

func (s *Service) backfillBanners(posts []models.PostModel) {
	for i := range posts {
		if posts[i].Banner == "" {
			posts[i].Banner = s.defaultBannerURL
		}
	}
}

// normalizeList trims entries and drops empties, keeping order.
func normalizeList(in []string) models.StringArray {
	out := make(models.StringArray, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseStringList accepts either a JSON array string or a comma separated
// list. Malformed JSON degrades to an empty list, never to an error.
func parseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil
		}
		return items
	}
	return strings.Split(raw, ",")
}
