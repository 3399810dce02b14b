package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type StoryHandler struct {
	storyRepo repositories.StoryRepository
	userRepo  repositories.UserRepository
	sessions  *syncengine.Manager
}

func NewStoryHandler(storyRepo repositories.StoryRepository, userRepo repositories.UserRepository, sessions *syncengine.Manager) *StoryHandler {
	return &StoryHandler{storyRepo: storyRepo, userRepo: userRepo, sessions: sessions}
}

// RegisterStoryRoutes mounts the story endpoints.
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories/feed", h.GetStoryFeed)
	g.POST("/stories/:story_id/seen", h.MarkStorySeen)
}

// CreateStory publishes a story that expires after 24 hours.
func (h *StoryHandler) CreateStory(c echo.Context) error {
	userID := middleware.UserID(c)

	req := new(models.CreateStoryRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	story := &models.Story{
		UserID:    userID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	}
	if err := h.storyRepo.CreateStory(c.Request().Context(), story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create story")
	}
	return c.JSON(http.StatusCreated, story)
}

// GetStoryFeed returns the active stories of the viewer and everyone they
// follow, oldest first, each flagged with whether the viewer has seen it.
func (h *StoryHandler) GetStoryFeed(c echo.Context) error {
	userID := middleware.UserID(c)

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	authorIDs := append(session.FollowingIDs(), userID)
	stories, err := h.storyRepo.GetActiveStoriesByUserIDs(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch stories")
	}

	seen, err := h.storyRepo.GetSeenStoryIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch seen state")
	}

	profiles := make(map[uint]models.Profile)
	if users, err := h.userRepo.GetUsersByIDs(authorIDs); err == nil {
		for i := range users {
			profiles[users[i].ID] = users[i].PublicProfile()
		}
	}

	views := make([]models.StoryView, 0, len(stories))
	for i := range stories {
		author, ok := profiles[stories[i].UserID]
		if !ok {
			author = models.PlaceholderProfile(stories[i].UserID)
		}
		views = append(views, models.StoryView{
			Story:  stories[i],
			Author: author,
			Seen:   seen[stories[i].ID.Hex()],
		})
	}
	return c.JSON(http.StatusOK, views)
}

// MarkStorySeen records that the viewer watched a story. Repeat views are
// no-ops.
func (h *StoryHandler) MarkStorySeen(c echo.Context) error {
	userID := middleware.UserID(c)
	storyID := c.Param("story_id")

	if err := h.storyRepo.MarkSeen(storyID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark story seen")
	}
	return c.NoContent(http.StatusNoContent)
}
