package repositories

import (
	"log"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	CreateNotification(n *models.Notification) error
	GetNotificationsByRecipient(recipientID uint, limit int) ([]models.Notification, error)
	MarkRead(id, recipientID uint) error
	MarkAllRead(recipientID uint) error
	UnreadCount(recipientID uint) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// CreateNotification stores the notification and publishes an insert event
// addressed to the recipient. Self-notifications (actor == recipient) are
// silently skipped.
func (r *PostgresNotificationRepository) CreateNotification(n *models.Notification) error {
	if n.ActorID == n.RecipientID {
		return nil
	}
	n.CreatedAt = time.Now()
	if err := r.db.Create(n).Error; err != nil {
		return err
	}
	if err := realtime.PublishRow(r.db, realtime.ActionInsert, realtime.TableNotifications, n.RecipientID, n); err != nil {
		log.Printf("notification repository: publish insert event: %v", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) GetNotificationsByRecipient(recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags one notification as read, scoped to the recipient so users
// cannot touch each other's notifications.
func (r *PostgresNotificationRepository) MarkRead(id, recipientID uint) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkAllRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Update("is_read", true).Error
}

func (r *PostgresNotificationRepository) UnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}
