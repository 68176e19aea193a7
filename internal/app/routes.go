package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/modules/analytics"
	"github.com/quillspace/core/internal/modules/auth"
	"github.com/quillspace/core/internal/modules/category"
	"github.com/quillspace/core/internal/modules/comment"
	"github.com/quillspace/core/internal/modules/engagement"
	"github.com/quillspace/core/internal/modules/feed"
	"github.com/quillspace/core/internal/modules/gateway"
	"github.com/quillspace/core/internal/modules/notification"
	"github.com/quillspace/core/internal/modules/post"
	"github.com/quillspace/core/internal/modules/subscription"
	"github.com/quillspace/core/internal/modules/tag"
	"github.com/quillspace/core/internal/modules/user"
	"github.com/quillspace/core/internal/pkg/mail"
	pkgredis "github.com/quillspace/core/internal/pkg/redis"
	"github.com/quillspace/core/internal/pkg/response"
	"github.com/quillspace/core/internal/pkg/storage"
)

var startTime = time.Now()

func (a *App) registerRoutes(rc *pkgredis.Client, store storage.ObjectStorage) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.Use(middleware.RateLimit(rc.Raw()))

	if a.cfg.Storage.Driver != "s3" {
		r.Static("/uploads", a.cfg.Storage.StaticDir)
	}

	mailer := mail.New(a.cfg.Mail)

	// Shared services
	notifySvc := notification.NewService(db)
	subSvc := subscription.NewService(db)
	engSvc := engagement.NewService(db)
	authSvc := auth.NewService(db, mailer, a.cfg.ClientURL, a.logger)
	userSvc := user.NewService(db, store, a.logger)
	postSvc := post.NewService(db, notifySvc, engSvc, store, a.cfg.Storage.DefaultBannerURL, a.logger)
	commentSvc := comment.NewService(db, engSvc, a.logger)
	categorySvc := category.NewService(db)
	tagSvc := tag.NewService(db)
	feedSvc := feed.NewService(db, subSvc)
	analyticsSvc := analytics.NewService(db)

	api := r.Group("/api")
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uptime": time.Since(startTime).Milliseconds()})
	})

	auth.NewHandler(authSvc).RegisterRoutes(api, authMW)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)
	post.NewHandler(postSvc).RegisterRoutes(api, authMW)
	engagement.NewHandler(engSvc).RegisterRoutes(api, authMW)
	comment.NewHandler(commentSvc).RegisterRoutes(api, authMW)
	category.NewHandler(categorySvc).RegisterRoutes(api, authMW)
	tag.NewHandler(tagSvc).RegisterRoutes(api, authMW)
	subscription.NewHandler(subSvc).RegisterRoutes(api, authMW)
	feed.NewHandler(feedSvc).RegisterRoutes(api, authMW)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(api, authMW)
	notification.NewHandler(notifySvc).RegisterRoutes(api, authMW)

	gateway.RegisterRoutes(r.Group(""), a.hub)
}
