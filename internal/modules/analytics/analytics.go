package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Summary aggregates an author's portfolio. Draft and published counts come
// from separate status-filtered queries, not subtraction.
type Summary struct {
	TotalBlogs     int64 `json:"totalBlogs"`
	PublishedBlogs int64 `json:"publishedBlogs"`
	Drafts         int64 `json:"drafts"`
	Views          int64 `json:"views"`
	Likes          int64 `json:"likes"`
	Comments       int64 `json:"comments"`
	Shares         int64 `json:"shares"`
}

// PostBreakdown is one row of the per-post metrics table.
type PostBreakdown struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Status    models.PostStatus `json:"status"`
	Views     int               `json:"views"`
	Likes     int               `json:"likes"`
	Shares    int               `json:"shares"`
	Comments  int               `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Service computes per-author analytics.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// AuthorSummary totals the author's posts and their engagement counters.
func (s *Service) AuthorSummary(authorID string) (*Summary, error) {
	sum := &Summary{}

	base := func() *gorm.DB {
		return s.db.Model(&models.PostModel{}).Where("author_id = ?", authorID)
	}
	if err := base().Count(&sum.TotalBlogs).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusPublished).Count(&sum.PublishedBlogs).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusDraft).Count(&sum.Drafts).Error; err != nil {
		return nil, err
	}

	var posts []models.PostModel
	err := s.db.
		Select("view_count, liked_by, share_count, comment_count").
		Where("author_id = ?", authorID).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		sum.Views += int64(p.ViewCount)
		sum.Likes += int64(len(p.LikedBy))
		sum.Shares += int64(p.ShareCount)
		sum.Comments += int64(p.CommentCount)
	}
	return sum, nil
}

// PerPostBreakdown returns one metrics row per post, newest first.
func (s *Service) PerPostBreakdown(authorID string) ([]PostBreakdown, error) {
	var posts []models.PostModel
	err := s.db.
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	rows := make([]PostBreakdown, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, PostBreakdown{
			ID:        p.ID,
			Title:     p.Title,
			Status:    p.Status,
			Views:     p.ViewCount,
			Likes:     len(p.LikedBy),
			Shares:    p.ShareCount,
			Comments:  p.CommentCount,
			CreatedAt: p.CreatedAt,
		})
	}
	return rows, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/analytics", authMW)
	g.GET("/summary", h.summary)
	g.GET("/posts", h.breakdown)
}

func (h *Handler) summary(c *gin.Context) {
	sum, err := h.svc.AuthorSummary(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sum)
}

func (h *Handler) breakdown(c *gin.Context) {
	rows, err := h.svc.PerPostBreakdown(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}
