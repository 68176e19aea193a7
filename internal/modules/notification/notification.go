package notification

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service handles notification delivery and inbox queries.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Notify persists a notification for a single recipient.
func (s *Service) Notify(n *models.NotificationModel) error {
	return s.db.Create(n).Error
}

// Inbox returns a user's notifications, newest first.
func (s *Service) Inbox(userID string) ([]models.NotificationModel, error) {
	var items []models.NotificationModel
	err := s.db.
		Preload("RelatedPost").
		Preload("RelatedUser").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// MarkRead flags a notification as read. Only the recipient may flip it.
func (s *Service) MarkRead(userID, id string) (*models.NotificationModel, error) {
	var n models.NotificationModel
	if err := s.db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	if !n.IsRead {
		if err := s.db.Model(&n).Update("is_read", true).Error; err != nil {
			return nil, err
		}
		n.IsRead = true
	}
	return &n, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/notifications", authMW)
	g.GET("", h.inbox)
	g.PATCH("/:id/read", h.markRead)
}

func (h *Handler) inbox(c *gin.Context) {
	items, err := h.svc.Inbox(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

func (h *Handler) markRead(c *gin.Context) {
	n, err := h.svc.MarkRead(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}
