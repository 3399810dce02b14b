package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/gateway"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type CommentHandler struct {
	sessions *syncengine.Manager
}

func NewCommentHandler(sessions *syncengine.Manager) *CommentHandler {
	return &CommentHandler{sessions: sessions}
}

// RegisterCommentRoutes mounts the comment endpoints.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.PUT("/posts/:post_id/comments/:comment_id", h.UpdateComment)
	g.DELETE("/posts/:post_id/comments/:comment_id", h.DeleteComment)
}

// GetComments returns a post's comments, oldest first, with author profiles.
func (h *CommentHandler) GetComments(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	comments, err := session.Comments(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments")
	}
	return c.JSON(http.StatusOK, h.decorate(c, session, comments))
}

// CreateComment adds a comment and returns the refreshed comment list.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	req := new(models.CreateCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	comments, err := session.AddComment(c.Request().Context(), postID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment")
	}
	return c.JSON(http.StatusCreated, h.decorate(c, session, comments))
}

// UpdateComment edits the viewer's own comment.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	commentID, err := parseUintParam(c, "comment_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	req := new(models.UpdateCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	comments, err := session.UpdateComment(c.Request().Context(), postID, commentID, req.Content)
	if errors.Is(err, gateway.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update comment")
	}
	return c.JSON(http.StatusOK, h.decorate(c, session, comments))
}

// DeleteComment removes the viewer's own comment. Deleting a comment that
// is already gone succeeds.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	commentID, err := parseUintParam(c, "comment_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	comments, err := session.DeleteComment(c.Request().Context(), postID, commentID)
	if errors.Is(err, gateway.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment")
	}
	return c.JSON(http.StatusOK, h.decorate(c, session, comments))
}

func (h *CommentHandler) decorate(c echo.Context, session *syncengine.Session, comments []*models.Comment) []models.CommentView {
	authorIDs := make([]uint, 0, len(comments))
	for _, cm := range comments {
		authorIDs = append(authorIDs, cm.UserID)
	}
	if err := session.LoadProfiles(c.Request().Context(), authorIDs); err != nil {
		log.Printf("Failed to load comment author profiles: %v", err)
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, cm := range comments {
		author, ok := session.ResolveProfile(cm.UserID)
		if !ok {
			author = models.PlaceholderProfile(cm.UserID)
		}
		views = append(views, models.CommentView{Comment: *cm, Author: author})
	}
	return views
}
