package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/apperr"
	"github.com/quillspace/core/internal/pkg/jwt"
	"github.com/quillspace/core/internal/pkg/mail"
	"github.com/quillspace/core/internal/pkg/response"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

type RegisterDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RequestResetDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordDTO struct {
	Password string `json:"password" binding:"required,min=6"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.UserModel `json:"user"`
}

// Service handles credential auth and the password reset flow.
type Service struct {
	db     *gorm.DB
	mailer *mail.Sender
	logger *zap.Logger

	// clientURL is the frontend base used when building reset links.
	clientURL string
}

func NewService(db *gorm.DB, mailer *mail.Sender, clientURL string, logger *zap.Logger) *Service {
	return &Service{db: db, mailer: mailer, clientURL: clientURL, logger: logger}
}

// Register creates a new account. Email addresses are unique.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{
		Name:     dto.Name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	return &u, s.db.Create(&u).Error
}

// Login verifies credentials and issues a JWT. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	token, err := jwt.Sign(u.ID, jwt.DefaultTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

// Me returns the authenticated user's account.
func (s *Service) Me(userID string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// RequestReset stores a one hour reset token for the account and mails the
// reset link. Unknown addresses return without error so the endpoint does
// not leak which emails exist.
func (s *Service) RequestReset(email string) error {
	var u models.UserModel
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)
	exp := time.Now().Add(resetTokenTTL)

	err = s.db.Model(&u).Updates(map[string]interface{}{
		"reset_token":     token,
		"reset_token_exp": exp,
	}).Error
	if err != nil {
		return err
	}

	if s.mailer != nil {
		link := fmt.Sprintf("%s/reset-password/%s", strings.TrimSuffix(s.clientURL, "/"), token)
		if err := s.mailer.SendPasswordReset(u.Email, link); err != nil && s.logger != nil {
			s.logger.Warn("reset mail failed", zap.String("email", u.Email), zap.Error(err))
		}
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(token, newPassword string) error {
	var u models.UserModel
	err := s.db.Where("reset_token = ? AND reset_token_exp > ?", token, time.Now()).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", apperr.ErrInvalidInput)
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Updates(map[string]interface{}{
		"password":        string(hash),
		"reset_token":     "",
		"reset_token_exp": nil,
	}).Error
}

// PurgeExpiredResetTokens clears stale reset tokens, run from cron.
func (s *Service) PurgeExpiredResetTokens() (int64, error) {
	res := s.db.Model(&models.UserModel{}).
		Where("reset_token <> '' AND reset_token_exp <= ?", time.Now()).
		Updates(map[string]interface{}{
			"reset_token":     "",
			"reset_token_exp": nil,
		})
	return res.RowsAffected, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/myaccount", authMW, h.me)
	g.POST("/request-reset", h.requestReset)
	g.POST("/reset/:token", h.resetPassword)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := jwt.Sign(u.ID, jwt.DefaultTTL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loginResponse{Token: token, User: u})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(dto.Email, dto.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: u})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) requestReset(c *gin.Context) {
	var dto RequestResetDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.RequestReset(dto.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "reset email sent if the account exists"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var dto ResetPasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ResetPassword(c.Param("token"), dto.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "password updated"})
}
