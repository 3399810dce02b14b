package repositories

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct-message data operations
type MessageRepository interface {
	CreateMessage(msg *models.Message) error
	GetMessagesForUser(userID uint) ([]models.Message, error)
	GetMessagesBetween(userID, peerID uint) ([]models.Message, error)
	MarkConversationRead(userID, peerID uint) error
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// CreateMessage assigns the server id and timestamp, stores the row and
// publishes an insert event addressed to the receiver.
func (r *PostgresMessageRepository) CreateMessage(msg *models.Message) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	if err := r.db.Create(msg).Error; err != nil {
		return err
	}
	if err := realtime.PublishRow(r.db, realtime.ActionInsert, realtime.TableMessages, msg.ReceiverID, msg); err != nil {
		log.Printf("message repository: publish insert event: %v", err)
	}
	return nil
}

// GetMessagesForUser returns every message the user sent or received, newest
// first.
func (r *PostgresMessageRepository) GetMessagesForUser(userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// GetMessagesBetween returns the two-party thread in chronological order.
func (r *PostgresMessageRepository) GetMessagesBetween(userID, peerID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkConversationRead flags every message from peer to user as read.
func (r *PostgresMessageRepository) MarkConversationRead(userID, peerID uint) error {
	return r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = false", peerID, userID).
		Update("read", true).Error
}
