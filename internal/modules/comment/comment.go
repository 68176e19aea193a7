package comment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/modules/engagement"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var linkPattern = regexp.MustCompile(`https?://`)

// isLikelySpam flags short comments that are mostly a link.
func isLikelySpam(content string) bool {
	return linkPattern.MatchString(content) && len(content) < 20
}

type AddCommentDTO struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required"`
}

// Service handles comments. The per-post comment counter lives on the post
// row and is maintained alongside, not derived from, the comment table.
type Service struct {
	db     *gorm.DB
	eng    *engagement.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, eng *engagement.Service, logger *zap.Logger) *Service {
	return &Service{db: db, eng: eng, logger: logger}
}

// ListByPost returns a post's comments, newest first. Spam-flagged comments
// are included; clients decide how to render them.
func (s *Service) ListByPost(postID string) ([]models.CommentModel, error) {
	var comments []models.CommentModel
	err := s.db.
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// ListByAuthor returns the caller's own comments, newest first.
func (s *Service) ListByAuthor(authorID string) ([]models.CommentModel, error) {
	var comments []models.CommentModel
	err := s.db.
		Preload("Post").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// Add creates a comment on a published post and bumps the post's counter.
func (s *Service) Add(postID, authorID, content string) (*models.CommentModel, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidInput)
	}

	var post models.PostModel
	if err := s.db.Select("id, status").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if post.Status != models.StatusPublished {
		return nil, fmt.Errorf("%w: cannot comment on a draft", apperr.ErrInvalidInput)
	}

	comment := models.CommentModel{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
		IsSpam:   isLikelySpam(content),
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.eng.IncCommentCount(postID); err != nil && s.logger != nil {
		s.logger.Warn("comment counter bump failed", zap.String("post", postID), zap.Error(err))
	}

	err := s.db.Preload("Author").First(&comment, "id = ?", comment.ID).Error
	return &comment, err
}

// Update edits the caller's own comment. The spam flag is set once at
// creation and is not re-evaluated here.
func (s *Service) Update(authorID, id, content string) (*models.CommentModel, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidInput)
	}
	comment, err := s.getOwned(authorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// Delete removes the caller's own comment and lowers the post's counter.
func (s *Service) Delete(authorID, id string) error {
	comment, err := s.getOwned(authorID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(comment).Error; err != nil {
		return err
	}
	if err := s.eng.DecCommentCount(comment.PostID); err != nil && s.logger != nil {
		s.logger.Warn("comment counter drop failed", zap.String("post", comment.PostID), zap.Error(err))
	}
	return nil
}

func (s *Service) getOwned(authorID, id string) (*models.CommentModel, error) {
	var comment models.CommentModel
	if err := s.db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, apperr.ErrForbidden
	}
	return &comment, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/posts/:id/comments", h.listByPost)
	rg.POST("/posts/:id/comments", authMW, h.add)

	g := rg.Group("/comments", authMW)
	g.GET("/mine", h.mine)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) listByPost(c *gin.Context) {
	comments, err := h.svc.ListByPost(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comments)
}

func (h *Handler) mine(c *gin.Context) {
	comments, err := h.svc.ListByAuthor(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comments)
}

func (h *Handler) add(c *gin.Context) {
	var dto AddCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.svc.Add(c.Param("id"), middleware.CurrentUserID(c), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comment)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
