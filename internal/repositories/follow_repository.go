package repositories

import (
	"github.com/tawasol-app/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository persists follow edges and the queries derived from them.
// Membership checks happen against the session's follow set, not here.
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	GetFollowers(userID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.User, error)
	GetFollowersCount(userID uint) (int64, error)
	GetFollowingCount(userID uint) (int64, error)
	GetFollowingIDs(userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts the edge. The unique index on (follower, following)
// makes a repeat insert surface as gorm.ErrDuplicatedKey for the caller.
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	return r.edgeUsers("follows.follower_id = users.id", "follows.following_id", userID)
}

func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	return r.edgeUsers("follows.following_id = users.id", "follows.follower_id", userID)
}

func (r *PostgresFollowRepository) GetFollowersCount(userID uint) (int64, error) {
	return r.countEdges("following_id", userID)
}

func (r *PostgresFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	return r.countEdges("follower_id", userID)
}

func (r *PostgresFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// edgeUsers resolves one side of the follow edge to user rows, joining
// instead of an id-list round trip.
func (r *PostgresFollowRepository) edgeUsers(joinOn, whereCol string, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Model(&models.User{}).
		Joins("JOIN follows ON "+joinOn).
		Where(whereCol+" = ?", userID).
		Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) countEdges(col string, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where(col+" = ?", userID).Count(&count).Error
	return count, err
}
