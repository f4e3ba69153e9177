package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindUnread(ctx context.Context, recipient Recipient) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, recipient Recipient, now time.Time) (int64, error)
	ExistsUnreadAdminMatching(ctx context.Context, fragment string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) FindUnread(ctx context.Context, recipient Recipient) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.recipientScope(ctx, recipient).
		Where("read_at IS NULL").
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, recipient Recipient, now time.Time) (int64, error) {
	result := r.recipientScope(ctx, recipient).
		Where("read_at IS NULL").
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExistsUnreadAdminMatching reports whether the admin inbox already holds an
// unread notification whose message contains the fragment, matched
// case-insensitively. LOWER + LIKE keeps the query portable across postgres
// and the sqlite driver used in tests.
func (r *repositoryImpl) ExistsUnreadAdminMatching(ctx context.Context, fragment string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("applicant_id IS NULL AND read_at IS NULL").
		Where("LOWER(message) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) recipientScope(ctx context.Context, recipient Recipient) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if id, ok := recipient.ApplicantID(); ok {
		return query.Where("applicant_id = ?", id)
	}
	return query.Where("applicant_id IS NULL")
}
