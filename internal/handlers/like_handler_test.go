package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tawasol-app/backend/internal/models"
)

// stubLikeRepo serves canned like state.
type stubLikeRepo struct {
	count int64
	liked bool
}

func (r *stubLikeRepo) CreateLike(like *models.Like) error               { return nil }
func (r *stubLikeRepo) DeleteLike(postID string, userID uint) error      { return nil }
func (r *stubLikeRepo) GetLikedPostIDs(userID uint) ([]string, error)    { return nil, nil }
func (r *stubLikeRepo) GetLikesCountByPostID(postID string) (int64, error) {
	return r.count, nil
}
func (r *stubLikeRepo) HasUserLikedPost(postID string, userID uint) (bool, error) {
	return r.liked, nil
}

func TestGetLikesCount_IncludesViewerLikeState(t *testing.T) {
	h := NewLikeHandler(&stubLikeRepo{count: 3, liked: true}, nil)

	c, rec := newAuthedContext(1, "/posts/abc/likes/count")
	c.SetParamNames("post_id")
	c.SetParamValues("abc")

	if err := h.GetLikesCount(c); err != nil {
		t.Fatalf("get likes count: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		PostID     string `json:"post_id"`
		LikesCount int64  `json:"likes_count"`
		UserLiked  bool   `json:"user_liked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.PostID != "abc" || body.LikesCount != 3 || !body.UserLiked {
		t.Fatalf("response = %+v, want post abc with 3 likes, viewer liked", body)
	}
}
