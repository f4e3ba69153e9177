package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for an applicant or for the admin inbox.
// ApplicantID is NULL only at the storage layer for admin-inbox rows; the
// domain surface addresses rows through notifications.Recipient instead.
type Notification struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicantID *uuid.UUID `gorm:"column:applicant_id;type:uuid"`
	Message     string     `gorm:"column:message;not null"`
	ReadAt      *time.Time `gorm:"column:read_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
