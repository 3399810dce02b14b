package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type LikeHandler struct {
	likeRepo repositories.LikeRepository
	sessions *syncengine.Manager
}

func NewLikeHandler(likeRepo repositories.LikeRepository, sessions *syncengine.Manager) *LikeHandler {
	return &LikeHandler{likeRepo: likeRepo, sessions: sessions}
}

// RegisterLikeRoutes mounts the like endpoints.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/like", h.ToggleLike)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCount)
}

// ToggleLike flips the viewer's like on a post and returns the resulting
// state. The count in the response reflects the optimistic adjustment.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	state, err := session.ToggleLike(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle like")
	}
	return c.JSON(http.StatusOK, state)
}

// GetLikesCount returns the stored like count for a post and whether the
// viewer has liked it, both straight from the store rather than a session
// cache, so posts viewed outside a warm session still get accurate state.
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	userID := middleware.UserID(c)
	postID := c.Param("post_id")

	count, err := h.likeRepo.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch like count")
	}
	liked, err := h.likeRepo.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch like state")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"post_id":     postID,
		"likes_count": count,
		"user_liked":  liked,
	})
}
