package feed

import (
	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/modules/subscription"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

const personalFeedLimit = 50

// Service assembles reading feeds from follows and category subscriptions.
type Service struct {
	db   *gorm.DB
	subs *subscription.Service
}

func NewService(db *gorm.DB, subs *subscription.Service) *Service {
	return &Service{db: db, subs: subs}
}

// Personal returns the 50 newest published posts from authors the user
// follows.
func (s *Service) Personal(userID string) ([]models.PostModel, error) {
	authorIDs, err := s.subs.FollowingIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return []models.PostModel{}, nil
	}

	var posts []models.PostModel
	err = s.db.
		Preload("Author").
		Preload("Categories").
		Where("author_id IN ? AND status = ?", authorIDs, models.StatusPublished).
		Order("created_at DESC").
		Limit(personalFeedLimit).
		Find(&posts).Error
	return posts, err
}

// ByCategories returns every published post in the user's subscribed
// categories, deduplicated across categories. Unlike the personal feed it
// carries no cap.
func (s *Service) ByCategories(userID string) ([]models.PostModel, error) {
	catIDs, err := s.subs.SubscribedCategoryIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(catIDs) == 0 {
		return []models.PostModel{}, nil
	}

	var posts []models.PostModel
	err = s.db.
		Preload("Author").
		Preload("Categories").
		Joins("JOIN post_categories pc ON pc.post_id = posts.id").
		Where("pc.category_id IN ? AND posts.status = ?", catIDs, models.StatusPublished).
		Distinct("posts.*").
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/feed", authMW)
	g.GET("", h.personal)
	g.GET("/categories", h.byCategories)
}

func (h *Handler) personal(c *gin.Context) {
	posts, err := h.svc.Personal(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, posts)
}

func (h *Handler) byCategories(c *gin.Context) {
	posts, err := h.svc.ByCategories(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, posts)
}
