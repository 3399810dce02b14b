package repositories

import (
	"context"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// StoryRepository defines the interface for story data operations. Stories
// live in MongoDB; seen-tracking lives in PostgreSQL.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error)
	MarkSeen(storyID string, userID uint) error
	GetSeenStoryIDs(userID uint) (map[string]bool, error)
}

// MongoStoryRepository implements StoryRepository
type MongoStoryRepository struct {
	collection *mongo.Collection
	pg         *gorm.DB
}

// NewStoryRepository creates a new MongoStoryRepository
func NewStoryRepository(db *mongo.Database, pg *gorm.DB) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories"), pg: pg}
}

// CreateStory stores a story with its 24h expiry stamped.
func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(StoryTTL)
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

// GetActiveStoriesByUserIDs returns unexpired stories by the given authors,
// oldest first so viewers replay them in order.
func (r *MongoStoryRepository) GetActiveStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// MarkSeen records that the user viewed the story. Repeated views are no-ops.
func (r *MongoStoryRepository) MarkSeen(storyID string, userID uint) error {
	seen := models.StorySeen{StoryID: storyID, UserID: userID, SeenAt: time.Now()}
	err := r.pg.Create(&seen).Error
	if err != nil && r.pg.Where("story_id = ? AND user_id = ?", storyID, userID).First(&models.StorySeen{}).Error == nil {
		return nil // already seen
	}
	return err
}

// GetSeenStoryIDs returns the set of story ids the user has already viewed.
func (r *MongoStoryRepository) GetSeenStoryIDs(userID uint) (map[string]bool, error) {
	var ids []string
	if err := r.pg.Model(&models.StorySeen{}).Where("user_id = ?", userID).Pluck("story_id", &ids).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}
