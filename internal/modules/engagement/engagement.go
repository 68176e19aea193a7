package engagement

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service tracks per-post engagement counters.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ToggleLike adds the user to the post's liker list, or removes them when
// already present. The whole list is read, mutated and written back, so two
// concurrent toggles on the same post can lose one of the writes.
func (s *Service) ToggleLike(postID, userID string) (*models.Metrics, error) {
	var post models.PostModel
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if post.LikedBy.Contains(userID) {
		kept := make(models.StringArray, 0, len(post.LikedBy))
		for _, id := range post.LikedBy {
			if id != userID {
				kept = append(kept, id)
			}
		}
		post.LikedBy = kept
	} else {
		post.LikedBy = append(post.LikedBy, userID)
	}

	if err := s.db.Model(&post).Update("liked_by", post.LikedBy).Error; err != nil {
		return nil, err
	}
	m := post.GetMetrics()
	return &m, nil
}

// RecordView increments the post's view counter by exactly one.
func (s *Service) RecordView(postID string) error {
	return s.bump(postID, "view_count", 1)
}

// RecordShare increments the post's share counter and returns the new count.
func (s *Service) RecordShare(postID string) (int, error) {
	if err := s.bump(postID, "share_count", 1); err != nil {
		return 0, err
	}
	var post models.PostModel
	if err := s.db.Select("share_count").First(&post, "id = ?", postID).Error; err != nil {
		return 0, err
	}
	return post.ShareCount, nil
}

// IncCommentCount bumps the denormalized comment counter.
func (s *Service) IncCommentCount(postID string) error {
	return s.bump(postID, "comment_count", 1)
}

// DecCommentCount lowers the comment counter, never below zero.
func (s *Service) DecCommentCount(postID string) error {
	res := s.db.Model(&models.PostModel{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count > 0 THEN comment_count - 1 ELSE 0 END"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Service) bump(postID, column string, delta int) error {
	res := s.db.Model(&models.PostModel{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Metrics returns the post's current engagement snapshot.
func (s *Service) Metrics(postID string) (*models.Metrics, error) {
	var post models.PostModel
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	m := post.GetMetrics()
	return &m, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.POST("/:id/like", authMW, h.toggleLike)
	g.POST("/:id/share", h.recordShare)
	g.GET("/:id/metrics", h.metrics)
}

func (h *Handler) toggleLike(c *gin.Context) {
	m, err := h.svc.ToggleLike(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) recordShare(c *gin.Context) {
	shares, err := h.svc.RecordShare(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"shares": shares})
}

func (h *Handler) metrics(c *gin.Context) {
	m, err := h.svc.Metrics(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}
