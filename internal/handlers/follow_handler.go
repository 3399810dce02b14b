package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type FollowHandler struct {
	followRepo repositories.FollowRepository
	sessions   *syncengine.Manager
}

func NewFollowHandler(followRepo repositories.FollowRepository, sessions *syncengine.Manager) *FollowHandler {
	return &FollowHandler{followRepo: followRepo, sessions: sessions}
}

// RegisterFollowRoutes mounts the follow endpoints.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// ToggleFollow flips the viewer's follow on the target user and returns the
// resulting state.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	userID := middleware.UserID(c)

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	following, err := session.ToggleFollow(c.Request().Context(), targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle follow")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":      targetID,
		"is_following": following,
	})
}

// GetFollowers lists a user's followers.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepo.GetFollowers(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch followers")
	}
	return c.JSON(http.StatusOK, toProfiles(users))
}

// GetFollowing lists the users a user follows.
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepo.GetFollowing(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch following")
	}
	return c.JSON(http.StatusOK, toProfiles(users))
}

func toProfiles(users []models.User) []models.Profile {
	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].PublicProfile())
	}
	return profiles
}
