package models

import (
	"time"

	"github.com/google/uuid"
)

// Applicant mirrors the record owned by the external user-management service.
// Rows are created and mutated there; this service only reads them by id.
type Applicant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username  string    `gorm:"column:username;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
