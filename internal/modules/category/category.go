package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	slugpkg "github.com/quillspace/core/internal/pkg/slug"
	"gorm.io/gorm"
)

type CategoryDTO struct {
	Name string `json:"name" binding:"required"`
}

// Service handles category CRUD. Names and slugs are unique.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.Order("name ASC").Find(&cats).Error
	return cats, err
}

func (s *Service) Create(name string) (*models.CategoryModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	slug := slugpkg.Make(name)

	var count int64
	err := s.db.Model(&models.CategoryModel{}).
		Where("name = ? OR slug = ?", name, slug).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: category %q already exists", apperr.ErrConflict, name)
	}

	cat := models.CategoryModel{Name: name, Slug: slug}
	return &cat, s.db.Create(&cat).Error
}

func (s *Service) Update(id, name string) (*models.CategoryModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	slug := slugpkg.Make(name)
	var count int64
	err := s.db.Model(&models.CategoryModel{}).
		Where("(name = ? OR slug = ?) AND id <> ?", name, slug, id).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: category %q already exists", apperr.ErrConflict, name)
	}

	err = s.db.Model(&cat).Updates(map[string]interface{}{"name": name, "slug": slug}).Error
	if err != nil {
		return nil, err
	}
	cat.Name = name
	cat.Slug = slug
	return &cat, nil
}

// Delete removes a category, its post links and its subscriptions. Posts
// themselves are untouched.
func (s *Service) Delete(id string) error {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.CategorySubscriptionModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/categories")
	g.GET("", h.list)
	g.POST("", authMW, h.create)
	g.PATCH("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.remove)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) create(c *gin.Context) {
	var dto CategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.svc.Create(dto.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

func (h *Handler) update(c *gin.Context) {
	var dto CategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.svc.Update(c.Param("id"), dto.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cat)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
