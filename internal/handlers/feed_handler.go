package handlers

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

const feedPageSize = 50

type FeedHandler struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	sessions *syncengine.Manager
}

func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, sessions *syncengine.Manager) *FeedHandler {
	return &FeedHandler{postRepo: postRepo, userRepo: userRepo, sessions: sessions}
}

// RegisterFeedRoutes mounts the feed endpoints.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/feed/trending", h.GetTrending)
}

// GetFeed returns posts from the viewer and everyone they follow,
// newest first, decorated with author profiles and like state.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID := middleware.UserID(c)

	session, err := h.sessions.Session(c.Request().Context(), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	authorIDs := append(session.FollowingIDs(), viewerID)
	posts, err := h.postRepo.GetPostsByUserIDs(c.Request().Context(), authorIDs, 0, feedPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch feed")
	}

	return c.JSON(http.StatusOK, h.decorate(c, posts, session))
}

// GetTrending returns recent posts ordered by engagement score.
func (h *FeedHandler) GetTrending(c echo.Context) error {
	viewerID := middleware.UserID(c)

	session, err := h.sessions.Session(c.Request().Context(), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	posts, err := h.postRepo.GetAllPosts(c.Request().Context(), 0, feedPageSize*2)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].EngagementScore() > posts[j].EngagementScore()
	})
	if len(posts) > feedPageSize {
		posts = posts[:feedPageSize]
	}

	return c.JSON(http.StatusOK, h.decorate(c, posts, session))
}

func (h *FeedHandler) decorate(c echo.Context, posts []models.Post, session *syncengine.Session) []models.PostView {
	// Batch-resolve authors so the feed does one user query, not N.
	authorSet := make(map[uint]bool, len(posts))
	for i := range posts {
		authorSet[posts[i].UserID] = true
	}
	ids := make([]uint, 0, len(authorSet))
	for id := range authorSet {
		ids = append(ids, id)
	}

	profiles := make(map[uint]models.Profile, len(ids))
	if users, err := h.userRepo.GetUsersByIDs(ids); err == nil {
		for i := range users {
			profiles[users[i].ID] = users[i].PublicProfile()
		}
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		author, ok := profiles[posts[i].UserID]
		if !ok {
			author = models.PlaceholderProfile(posts[i].UserID)
		}
		views = append(views, models.PostView{
			Post:      posts[i],
			Author:    author,
			UserLiked: session.Liked(posts[i].EntityID()),
		})
	}
	return views
}
