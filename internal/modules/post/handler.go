package post

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/quillspace/core/internal/middleware"
	"github.com/quillspace/core/internal/models"
	"github.com/quillspace/core/internal/pkg/pagination"
	"github.com/quillspace/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.GET("", h.list)
	g.GET("/mine", authMW, h.myPosts)
	g.GET("/:id", middleware.OptionalAuth(), h.get)
	g.POST("", authMW, h.create)
	g.PATCH("/:id", authMW, h.update)
	g.POST("/:id/unpublish", authMW, h.unpublish)
	g.DELETE("/:id", authMW, h.remove)
	g.POST("/upload-editor", authMW, h.uploadEditorImage)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	lq := ListQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Author:   c.Query("author"),
	}
	posts, pag, err := h.svc.List(q, lq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, posts, pag)
}

func (h *Handler) myPosts(c *gin.Context) {
	posts, pag, err := h.svc.MyPosts(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, posts, pag)
}

func (h *Handler) get(c *gin.Context) {
	post, err := h.svc.Fetch(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}

// create accepts multipart form data: title, content, status, banner file,
// and categories/tags as either JSON array strings or comma lists.
func (h *Handler) create(c *gin.Context) {
	dto := &CreatePostDTO{
		Title:      c.PostForm("title"),
		Excerpt:    c.PostForm("excerpt"),
		Content:    c.PostForm("content"),
		Status:     models.PostStatus(c.PostForm("status")),
		Categories: parseStringList(c.PostForm("categories")),
		Tags:       parseStringList(c.PostForm("tags")),
	}
	if fh, err := c.FormFile("banner"); err == nil {
		file, err := readUploadedFile(fh)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		dto.Banner = file
	}

	post, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

func (h *Handler) update(c *gin.Context) {
	dto := &UpdatePostDTO{}
	if v, ok := c.GetPostForm("title"); ok {
		dto.Title = &v
	}
	if v, ok := c.GetPostForm("excerpt"); ok {
		dto.Excerpt = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		dto.Content = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		st := models.PostStatus(v)
		dto.Status = &st
	}
	if v, ok := c.GetPostForm("categories"); ok {
		dto.Categories = parseStringList(v)
	}
	if v, ok := c.GetPostForm("tags"); ok {
		dto.Tags = parseStringList(v)
	}
	if fh, err := c.FormFile("banner"); err == nil {
		file, err := readUploadedFile(fh)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		dto.Banner = file
	}

	post, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}

func (h *Handler) unpublish(c *gin.Context) {
	post, err := h.svc.Unpublish(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) uploadEditorImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	file, err := readUploadedFile(fh)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	url, err := h.svc.UploadEditorImage(c.Request.Context(), file.Name, file.ContentType, file.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

func readUploadedFile(fh *multipart.FileHeader) (*uploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &uploadedFile{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}
