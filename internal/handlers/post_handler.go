package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type PostHandler struct {
	postRepo         repositories.PostRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	sessions         *syncengine.Manager
}

func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository, sessions *syncengine.Manager) *PostHandler {
	return &PostHandler{
		postRepo:         postRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		sessions:         sessions,
	}
}

// RegisterPostRoutes mounts the post CRUD and share endpoints.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:post_id", h.GetPost)
	g.PUT("/posts/:post_id", h.UpdatePost)
	g.DELETE("/posts/:post_id", h.DeletePost)
	g.POST("/posts/:post_id/share", h.SharePost)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// CreatePost creates a new post for the authenticated user.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := middleware.UserID(c)

	req := new(models.CreatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaNone
	}
	post := &models.Post{
		UserID:    userID,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		MediaType: mediaType,
	}
	if err := h.postRepo.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post decorated with the author profile and the
// viewer's like state.
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID := middleware.UserID(c)
	postID := c.Param("post_id")

	post, err := h.postRepo.GetPostByID(c.Request().Context(), postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}

	session, err := h.sessions.Session(c.Request().Context(), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	view := models.PostView{Post: *post, UserLiked: session.Liked(post.EntityID())}
	if author, err := h.userRepo.GetUserByID(post.UserID); err == nil {
		view.Author = author.PublicProfile()
	} else {
		view.Author = models.PlaceholderProfile(post.UserID)
	}
	return c.JSON(http.StatusOK, view)
}

// GetPosts returns the most recent posts across all users.
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepo.GetAllPosts(c.Request().Context(), 0, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}
	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts returns a user's posts, newest first.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	posts, err := h.postRepo.GetPostsByUserID(c.Request().Context(), targetID, 0, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost edits a post's content. Only the author may edit.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	req := new(models.UpdatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	post, err := h.postRepo.GetPostByID(c.Request().Context(), postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own posts")
	}

	post.Content = req.Content
	if err := h.postRepo.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post. Only the author may delete.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	post, err := h.postRepo.GetPostByID(c.Request().Context(), postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepo.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}
	return c.NoContent(http.StatusNoContent)
}

// SharePost notifies a post's author that someone shared their post.
func (h *PostHandler) SharePost(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	post, err := h.postRepo.GetPostByID(c.Request().Context(), postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}

	n := &models.Notification{
		Type:        models.NotificationShare,
		ActorID:     userID,
		RecipientID: post.UserID,
		PostID:      post.EntityID(),
	}
	if err := h.notificationRepo.CreateNotification(n); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record share")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Post shared"})
}
