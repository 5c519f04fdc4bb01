package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

const postLiveMessage = "Your post is now live!"

type PostHdl interface {
	Index(c *gin.Context)
	CreatePost(c *gin.Context)
	Explore(c *gin.Context)
}

type PostHandler struct {
	page
	Store        repositories.Store
	Metrics      *metrics.Metrics
	PostsPerPage int
}

func NewPostHandler(cookies *utils.Cookies, store repositories.Store, m *metrics.Metrics, postsPerPage int) PostHdl {
	return &PostHandler{
		page:         page{Cookies: cookies},
		Store:        store,
		Metrics:      m,
		PostsPerPage: postsPerPage,
	}
}

type listPosts func(offset, limit int) ([]*schemas.Post, int, error)

// listPage loads the page requested by the ?page parameter. Pages past the end are empty.
func (handler *PostHandler) listPage(c *gin.Context, list listPosts) ([]*schemas.Post, schemas.Pagination, error) {
	pagination := utils.NewPagination(utils.ParsePageParam(c), handler.PostsPerPage, 0)
	posts, total, err := list(pagination.Offset(), pagination.PerPage)
	if err != nil {
		return nil, pagination, err
	}
	return posts, utils.NewPagination(pagination.Page, pagination.PerPage, total), nil
}

func (handler *PostHandler) renderIndex(c *gin.Context, status int, form *schemas.CreatePostRequest) {
	user := utils.CurrentUser(c)
	posts, pagination, err := handler.listPage(c, func(offset, limit int) ([]*schemas.Post, int, error) {
		return handler.Store.Posts().ListFollowed(c, user.ID, offset, limit)
	})
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.render(c, status, "index.html", "Home", gin.H{
		"Form":       form,
		"Posts":      posts,
		"Pagination": pagination,
		"PagePath":   "/index",
	})
}

// Index shows the followed feed of the current user.
func (handler *PostHandler) Index(c *gin.Context) {
	handler.renderIndex(c, http.StatusOK, nil)
}

// CreatePost publishes a post of the current user with its detected language.
func (handler *PostHandler) CreatePost(c *gin.Context) {
	createPostRequest := utils.Payload[schemas.CreatePostRequest](c)
	if formErrors := utils.FormErrors(c); len(formErrors) > 0 {
		handler.renderIndex(c, http.StatusBadRequest, createPostRequest)
		return
	}

	// v7 ids sort by creation time
	id, err := uuid.NewV7()
	if err != nil {
		handler.internalError(c, err)
		return
	}
	post := &schemas.Post{
		ID:        id,
		AuthorID:  utils.CurrentUser(c).ID,
		Body:      createPostRequest.Post,
		Language:  utils.DetectLanguage(createPostRequest.Post),
		CreatedAt: time.Now().UTC(),
	}
	err = handler.Store.WithTx(c, func(tx repositories.Store) error {
		return tx.Posts().Create(c, post)
	})
	if err != nil {
		handler.internalError(c, err)
		return
	}

	language := post.Language
	if language == "" {
		language = "unknown"
	}
	handler.Metrics.PostsCreated.WithLabelValues(language).Inc()
	handler.redirect(c, "/index", postLiveMessage)
}

// Explore lists the posts of every user.
func (handler *PostHandler) Explore(c *gin.Context) {
	posts, pagination, err := handler.listPage(c, func(offset, limit int) ([]*schemas.Post, int, error) {
		return handler.Store.Posts().ListAll(c, offset, limit)
	})
	if err != nil {
		handler.internalError(c, err)
		return
	}

	handler.render(c, http.StatusOK, "explore.html", "Explore", gin.H{
		"Posts":      posts,
		"Pagination": pagination,
		"PagePath":   "/explore",
	})
}
