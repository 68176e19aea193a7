package user

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/response"
	"github.com/quillspace/core/internal/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles profile reads and updates.
type Service struct {
	db      *gorm.DB
	storage storage.ObjectStorage
	logger  *zap.Logger
}

func NewService(db *gorm.DB, store storage.ObjectStorage, logger *zap.Logger) *Service {
	return &Service{db: db, storage: store, logger: logger}
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Name     *string
	Username *string
	Bio      *string
	Links    *models.SocialLinks
	Avatar   *multipart.FileHeader
}

// UpdateProfile applies a partial profile update, uploading a new avatar
// when one was attached.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd *ProfileUpdate) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
		u.Name = *upd.Name
	}
	if upd.Username != nil {
		updates["username"] = *upd.Username
		u.Username = upd.Username
	}
	if upd.Bio != nil {
		updates["bio"] = *upd.Bio
		u.Bio = *upd.Bio
	}
	if upd.Links != nil {
		updates["links"] = *upd.Links
		u.Links = *upd.Links
	}

	if upd.Avatar != nil {
		data, contentType, err := readUpload(upd.Avatar)
		if err != nil {
			return nil, err
		}
		key := storage.BuildObjectKey("avatars", upd.Avatar.Filename)
		url := storage.StoreOrDefault(ctx, s.storage, s.logger, key, data, contentType, u.Avatar)
		updates["avatar"] = url
		u.Avatar = url
	}

	if len(updates) == 0 {
		return u, nil
	}
	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users")
	g.GET("/myprofile", authMW, h.myProfile)
	g.PATCH("/updateprofile", authMW, h.updateProfile)
	g.GET("/:id", h.publicProfile)
}

func (h *Handler) myProfile(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// updateProfile accepts multipart form data so the avatar can ride along
// with the text fields. Social links arrive as links[twitter] style keys.
func (h *Handler) updateProfile(c *gin.Context) {
	upd := &ProfileUpdate{}

	if v, ok := c.GetPostForm("name"); ok {
		upd.Name = &v
	}
	if v, ok := c.GetPostForm("username"); ok {
		upd.Username = &v
	}
	if v, ok := c.GetPostForm("bio"); ok {
		upd.Bio = &v
	}

	links := models.SocialLinks{}
	hasLinks := false
	for key, dst := range map[string]*string{
		"links[twitter]":  &links.Twitter,
		"links[linkedin]": &links.Linkedin,
		"links[github]":   &links.Github,
		"links[facebook]": &links.Facebook,
		"links[whatsapp]": &links.Whatsapp,
		"links[youtube]":  &links.Youtube,
	} {
		if v, ok := c.GetPostForm(key); ok {
			*dst = v
			hasLinks = true
		}
	}
	if hasLinks {
		upd.Links = &links
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		upd.Avatar = fh
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) publicProfile(c *gin.Context) {
	u, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}
