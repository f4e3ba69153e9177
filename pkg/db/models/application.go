package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/transitpass/transitpass-backend/pkg/enums"
)

// Application is a single travel-pass application. ApplicantID is a weak
// reference: the applicant row belongs to user management and is looked up
// explicitly when details are needed, never preloaded as an owning pointer.
//
// PassPayload is non-empty exactly when Status is approved; RejectionReason
// is set exactly when Status is rejected.
type Application struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicantID      uuid.UUID               `gorm:"column:applicant_id;type:uuid;not null"`
	DocumentKey      string                  `gorm:"column:document_key;not null"`
	ClaimedFullName  string                  `gorm:"column:claimed_full_name;not null"`
	ClaimedDocNumber string                  `gorm:"column:claimed_doc_number;not null"`
	TripFrom         string                  `gorm:"column:trip_from;not null"`
	TripTo           string                  `gorm:"column:trip_to;not null"`
	Duration         enums.PassDuration      `gorm:"column:duration;not null"`
	ValidTill        time.Time               `gorm:"column:valid_till;not null"`
	Status           enums.ApplicationStatus `gorm:"column:status;type:application_status;not null;default:'manual_review'"`
	RejectionReason  *string                 `gorm:"column:rejection_reason"`
	PassPayload      string                  `gorm:"column:pass_payload"`
	AppliedAt        time.Time               `gorm:"column:applied_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
