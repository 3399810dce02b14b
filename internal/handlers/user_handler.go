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

type UserHandler struct {
	userRepo   repositories.UserRepository
	followRepo repositories.FollowRepository
	sessions   *syncengine.Manager
}

func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, sessions *syncengine.Manager) *UserHandler {
	return &UserHandler{userRepo: userRepo, followRepo: followRepo, sessions: sessions}
}

// RegisterUserRoutes mounts the profile and user lookup endpoints.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// GetProfile returns the authenticated user's own profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := middleware.UserID(c)

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user.PublicProfile())
}

// UpdateProfile updates the authenticated user's profile fields.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.UserID(c)

	req := new(models.UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepo.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, user.PublicProfile())
}

// GetUser returns a public profile with follower counts and whether the
// viewer follows the target.
func (h *UserHandler) GetUser(c echo.Context) error {
	viewerID := middleware.UserID(c)

	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepo.GetUserByID(targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}

	followers, err := h.followRepo.GetFollowersCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch follower count")
	}
	following, err := h.followRepo.GetFollowingCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch following count")
	}

	session, err := h.sessions.Session(c.Request().Context(), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":            user.PublicProfile(),
		"followers_count": followers,
		"following_count": following,
		"is_following":    session.IsFollowing(user.ID),
	})
}

// SearchUsers matches usernames and full names against a prefix query.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, []models.Profile{})
	}

	users, err := h.userRepo.SearchUsers(query, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search users")
	}
	return c.JSON(http.StatusOK, toProfiles(users))
}
