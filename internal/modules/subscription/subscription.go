package subscription

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service manages author follows and category subscriptions.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ToggleFollow follows the target if not yet followed, otherwise unfollows.
// Returns true when the caller now follows the target.
func (s *Service) ToggleFollow(followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, apperr.ErrInvalidInput
	}
	var target models.UserModel
	if err := s.db.Select("id").First(&target, "id = ?", followingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, err
	}

	var sub models.SubscriptionModel
	err := s.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&sub).Error
	switch {
	case err == nil:
		return false, s.db.Delete(&sub).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.SubscriptionModel{FollowerID: followerID, FollowingID: followingID}
		return true, s.db.Create(&sub).Error
	default:
		return false, err
	}
}

// IsFollowing reports whether follower follows following.
func (s *Service) IsFollowing(followerID, followingID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.SubscriptionModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// FollowingIDs returns the IDs of everyone the user follows.
func (s *Service) FollowingIDs(userID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.SubscriptionModel{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// FollowerIDs returns the IDs of everyone following the user.
func (s *Service) FollowerIDs(userID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.SubscriptionModel{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// FollowedBloggers returns the users the caller follows.
func (s *Service) FollowedBloggers(userID string) ([]models.UserModel, error) {
	var users []models.UserModel
	err := s.db.
		Joins("JOIN subscriptions ON subscriptions.following_id = users.id").
		Where("subscriptions.follower_id = ?", userID).
		Find(&users).Error
	return users, err
}

// ToggleCategory subscribes the user to the category, or unsubscribes when
// already subscribed. Returns true when now subscribed.
func (s *Service) ToggleCategory(userID, categoryID string) (bool, error) {
	var cat models.CategoryModel
	if err := s.db.Select("id").First(&cat, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, err
	}

	var sub models.CategorySubscriptionModel
	err := s.db.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&sub).Error
	switch {
	case err == nil:
		return false, s.db.Delete(&sub).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.CategorySubscriptionModel{UserID: userID, CategoryID: categoryID}
		return true, s.db.Create(&sub).Error
	default:
		return false, err
	}
}

// SubscribedCategoryIDs returns the IDs of categories the user subscribes to.
func (s *Service) SubscribedCategoryIDs(userID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.CategorySubscriptionModel{}).
		Where("user_id = ?", userID).
		Pluck("category_id", &ids).Error
	return ids, err
}

// SubscribedCategories returns the categories the user subscribes to.
func (s *Service) SubscribedCategories(userID string) ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.
		Joins("JOIN category_subscriptions ON category_subscriptions.category_id = categories.id").
		Where("category_subscriptions.user_id = ?", userID).
		Find(&cats).Error
	return cats, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/subscriptions", authMW)
	// both verbs toggle; clients treat DELETE as "unfollow" but the server
	// flips state either way
	g.POST("/:userId", h.toggleFollow)
	g.DELETE("/:userId", h.toggleFollow)
	g.GET("/:userId/check", h.checkFollow)
	g.GET("/bloggers", h.bloggers)
	g.POST("/categories/:categoryId", h.toggleCategory)
	g.GET("/categories", h.categories)
}

func (h *Handler) toggleFollow(c *gin.Context) {
	subscribed, err := h.svc.ToggleFollow(middleware.CurrentUserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"subscribed": subscribed})
}

func (h *Handler) checkFollow(c *gin.Context) {
	subscribed, err := h.svc.IsFollowing(middleware.CurrentUserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"subscribed": subscribed})
}

func (h *Handler) bloggers(c *gin.Context) {
	users, err := h.svc.FollowedBloggers(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

func (h *Handler) toggleCategory(c *gin.Context) {
	subscribed, err := h.svc.ToggleCategory(middleware.CurrentUserID(c), c.Param("categoryId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"subscribed": subscribed})
}

func (h *Handler) categories(c *gin.Context) {
	cats, err := h.svc.SubscribedCategories(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cats)
}
