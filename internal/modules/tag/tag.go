package tag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"gorm.io/gorm"
)

type TagDTO struct {
	Name   string `json:"name" binding:"required"`
	PostID string `json:"postId" binding:"required"`
}

type UpdateTagDTO struct {
	Name string `json:"name" binding:"required"`
}

// Service manages the standalone tag rows. Each row belongs to one post;
// the same name may appear on many posts.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List() ([]models.TagModel, error) {
	var tags []models.TagModel
	err := s.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *Service) Create(name, postID string) (*models.TagModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	var post models.PostModel
	if err := s.db.Select("id").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	t := models.TagModel{Name: name, PostID: postID}
	return &t, s.db.Create(&t).Error
}

func (s *Service) Update(id, name string) (*models.TagModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	var t models.TagModel
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&t).Update("name", name).Error; err != nil {
		return nil, err
	}
	t.Name = name
	return &t, nil
}

func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.TagModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/tags")
	g.GET("", h.list)
	g.POST("", authMW, h.create)
	g.PATCH("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.remove)
}

func (h *Handler) list(c *gin.Context) {
	tags, err := h.svc.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tags)
}

func (h *Handler) create(c *gin.Context) {
	var dto TagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Create(dto.Name, dto.PostID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Update(c.Param("id"), dto.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
