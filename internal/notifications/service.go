package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

// Notification message templates. The exact wording is part of the product
// surface and asserted in tests; change with care.
const (
	pendingReviewMessageFmt = "New bus pass application pending review from %s"
)

// Service defines notification dispatch and inbox operations.
type Service interface {
	NotifyUser(ctx context.Context, applicantID uuid.UUID, message string) error
	NotifyAdmins(ctx context.Context, message string) error
	NotifyPendingReview(ctx context.Context, fullName string) error
	ListUnread(ctx context.Context, recipient Recipient) ([]models.Notification, error)
	FetchAndMarkRead(ctx context.Context, recipient Recipient) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, recipient Recipient) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) NotifyUser(ctx context.Context, applicantID uuid.UUID, message string) error {
	if applicantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "applicant id required")
	}
	return s.create(ctx, ForApplicant(applicantID), message)
}

func (s *service) NotifyAdmins(ctx context.Context, message string) error {
	return s.create(ctx, AdminInbox(), message)
}

// NotifyPendingReview raises the admin alert for a freshly submitted
// application. The alert is suppressed while an unread admin notification
// already mentions the same applicant, so repeated submissions do not flood
// the review inbox.
func (s *service) NotifyPendingReview(ctx context.Context, fullName string) error {
	if fullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "applicant full name required")
	}

	exists, err := s.repo.ExistsUnreadAdminMatching(ctx, fullName)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending-review duplicates")
	}
	if exists {
		return nil
	}

	return s.create(ctx, AdminInbox(), fmt.Sprintf(pendingReviewMessageFmt, fullName))
}

func (s *service) ListUnread(ctx context.Context, recipient Recipient) ([]models.Notification, error) {
	if !recipient.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	rows, err := s.repo.FindUnread(ctx, recipient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unread notifications")
	}
	return rows, nil
}

// FetchAndMarkRead returns the recipient's unread notifications and marks
// them read in the same call. An immediate second call returns an empty set.
func (s *service) FetchAndMarkRead(ctx context.Context, recipient Recipient) ([]models.Notification, error) {
	rows, err := s.ListUnread(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if _, err := s.repo.MarkAllRead(ctx, recipient, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return rows, nil
}

func (s *service) MarkAllRead(ctx context.Context, recipient Recipient) (int64, error) {
	if !recipient.Valid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	updated, err := s.repo.MarkAllRead(ctx, recipient, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return updated, nil
}

func (s *service) create(ctx context.Context, recipient Recipient, message string) error {
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	notification := &models.Notification{
		ApplicantID: recipient.storageID(),
		Message:     message,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}
