package repositories

import (
	"github.com/tawasol-app/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(postID string, userID uint) error
	HasUserLikedPost(postID string, userID uint) (bool, error)
	GetLikesCountByPostID(postID string) (int64, error)
	GetLikedPostIDs(userID uint) ([]string, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike removes the like; a missing row returns ErrNotFound so the
// caller can decide whether that is a conflict or an already-true end state.
func (r *PostgresLikeRepository) DeleteLike(postID string, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// GetLikedPostIDs returns the ids of every post the user has liked.
func (r *PostgresLikeRepository) GetLikedPostIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Like{}).Where("user_id = ?", userID).Pluck("post_id", &ids).Error
	return ids, err
}
