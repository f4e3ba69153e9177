package applications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/transitpass/transitpass-backend/internal/applicants"
	"github.com/transitpass/transitpass-backend/internal/identity"
	"github.com/transitpass/transitpass-backend/pkg/db/models"
	"github.com/transitpass/transitpass-backend/pkg/enums"
	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
	"github.com/transitpass/transitpass-backend/pkg/logger"
)

// validTillLayout renders dates the way they appear on the printed pass,
// e.g. "Mon Sep 07 2026".
const validTillLayout = "Mon Jan 02 2006"

const (
	approvedMessage     = "Your bus pass has been approved!"
	rejectedMessageFmt  = "Your bus pass has been rejected. Reason: %s."
	defaultRejectReason = "No reason provided"
)

var validate = validator.New()

// textRecognizer extracts text from a document image.
type textRecognizer interface {
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

// payloadRenderer turns the pass text into its machine-readable form.
type payloadRenderer interface {
	Render(text string) (string, error)
}

// Notifier is the slice of the notification dispatcher the lifecycle needs.
type Notifier interface {
	NotifyUser(ctx context.Context, applicantID uuid.UUID, message string) error
	NotifyAdmins(ctx context.Context, message string) error
	NotifyPendingReview(ctx context.Context, fullName string) error
}

// Service drives the application lifecycle: submission with automatic
// verification, admin approval and rejection, and read views.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Application, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Application, error)
	LatestForApplicant(ctx context.Context, applicantID uuid.UUID) (*models.Application, error)
	ListByStatus(ctx context.Context, status enums.ApplicationStatus) ([]models.Application, error)
	Summary(ctx context.Context) (*StatusSummary, error)
}

type service struct {
	repo        Repository
	applicants  applicants.Repository
	notifier    Notifier
	recognizer  textRecognizer
	renderer    payloadRenderer
	logg        *logger.Logger
	ocrLanguage string
	now         func() time.Time
}

// ServiceParams carries the lifecycle service dependencies.
type ServiceParams struct {
	Repo        Repository
	Applicants  applicants.Repository
	Notifier    Notifier
	Recognizer  textRecognizer
	Renderer    payloadRenderer
	Logger      *logger.Logger
	OCRLanguage string
}

// NewService wires the application lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "applications repository required")
	}
	if params.Applicants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "applicants repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification service required")
	}
	if params.Recognizer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "text recognizer required")
	}
	if params.Renderer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payload renderer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:        params.Repo,
		applicants:  params.Applicants,
		notifier:    params.Notifier,
		recognizer:  params.Recognizer,
		renderer:    params.Renderer,
		logg:        params.Logger,
		ocrLanguage: params.OCRLanguage,
		now:         time.Now,
	}, nil
}

// SubmitInput is a new application as received from the upload surface. The
// document image has already been stored; DocumentKey references it.
type SubmitInput struct {
	ApplicantID      uuid.UUID          `json:"applicant_id" validate:"required"`
	ClaimedFullName  string             `json:"claimed_full_name" validate:"required"`
	ClaimedDocNumber string             `json:"claimed_doc_number" validate:"required"`
	TripFrom         string             `json:"trip_from" validate:"required"`
	TripTo           string             `json:"trip_to" validate:"required"`
	Duration         enums.PassDuration `json:"duration" validate:"required"`
	DocumentKey      string             `json:"document_key" validate:"required"`
	DocumentImage    []byte             `json:"document_image" validate:"required"`
}

// StatusSummary is the admin dashboard counter row.
type StatusSummary struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Submit verifies the claimed identity against the document text and creates
// the application as approved or in manual review. Extraction failures never
// fail the submission; they resolve to empty text and a manual-review route.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Application, error) {
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	ctx = s.logg.WithApplicantID(ctx, input.ApplicantID.String())

	text, err := s.recognizer.Recognize(ctx, input.DocumentImage, s.ocrLanguage)
	if err != nil {
		s.logg.Warn(ctx, "document text extraction failed, routing to manual review")
		text = ""
	}

	verified := identity.Verify(input.ClaimedFullName, input.ClaimedDocNumber, text)
	validTill := validTillFrom(s.now(), input.Duration)

	application := &models.Application{
		ApplicantID:      input.ApplicantID,
		DocumentKey:      input.DocumentKey,
		ClaimedFullName:  input.ClaimedFullName,
		ClaimedDocNumber: input.ClaimedDocNumber,
		TripFrom:         input.TripFrom,
		TripTo:           input.TripTo,
		Duration:         input.Duration,
		ValidTill:        validTill,
		Status:           enums.ApplicationStatusManualReview,
	}
	if verified {
		payload, err := s.renderPayload(application)
		if err != nil {
			return nil, err
		}
		application.Status = enums.ApplicationStatusApproved
		application.PassPayload = payload
	}

	if err := s.repo.Create(ctx, application); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application")
	}

	// Persist-then-notify is best effort: the application exists even when
	// the alert cannot be raised.
	if application.Status == enums.ApplicationStatusManualReview {
		if err := s.notifier.NotifyPendingReview(ctx, input.ClaimedFullName); err != nil {
			s.logg.Error(ctx, "pending-review alert failed", err)
		}
	}

	return application, nil
}

// Approve finalizes a manual-review application as approved. Exactly one of
// two concurrent decisions wins; the loser observes CodeStateConflict.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}
	ctx = s.logg.WithApplicationID(ctx, id.String())

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := application.PassPayload
	if payload == "" {
		payload, err = s.renderPayload(application)
		if err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.UpdateStatusIfCurrent(ctx, id,
		enums.ApplicationStatusManualReview, enums.ApplicationStatusApproved,
		map[string]any{"pass_payload": payload})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve application")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "application already finalized")
	}

	application.Status = enums.ApplicationStatusApproved
	application.PassPayload = payload

	if err := s.notifier.NotifyUser(ctx, application.ApplicantID, approvedMessage); err != nil {
		s.logg.Error(ctx, "approval notification failed", err)
	}
	return application, nil
}

// Reject finalizes a manual-review application as rejected, storing the given
// reason or a placeholder when none is provided.
func (s *service) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Application, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}
	ctx = s.logg.WithApplicationID(ctx, id.String())

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultRejectReason
	}

	rows, err := s.repo.UpdateStatusIfCurrent(ctx, id,
		enums.ApplicationStatusManualReview, enums.ApplicationStatusRejected,
		map[string]any{"rejection_reason": reason})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject application")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "application already finalized")
	}

	application.Status = enums.ApplicationStatusRejected
	application.RejectionReason = &reason

	if err := s.notifier.NotifyUser(ctx, application.ApplicantID, fmt.Sprintf(rejectedMessageFmt, reason)); err != nil {
		s.logg.Error(ctx, "rejection notification failed", err)
	}
	return application, nil
}

// LatestForApplicant returns the applicant's most recent application, the
// record behind the "current pass state" view.
func (s *service) LatestForApplicant(ctx context.Context, applicantID uuid.UUID) (*models.Application, error) {
	if applicantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "applicant id required")
	}

	if _, err := s.applicants.FindByID(ctx, applicantID); err != nil {
		return nil, err
	}
	return s.repo.FindLatestByApplicant(ctx, applicantID)
}

func (s *service) ListByStatus(ctx context.Context, status enums.ApplicationStatus) ([]models.Application, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown application status")
	}
	rows, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	return rows, nil
}

func (s *service) Summary(ctx context.Context) (*StatusSummary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count applications")
	}

	summary := &StatusSummary{
		Pending:  counts[enums.ApplicationStatusManualReview],
		Approved: counts[enums.ApplicationStatusApproved],
		Rejected: counts[enums.ApplicationStatusRejected],
	}
	summary.Total = summary.Pending + summary.Approved + summary.Rejected
	return summary, nil
}

func (s *service) renderPayload(application *models.Application) (string, error) {
	text := PassText(application.TripFrom, application.TripTo, application.Duration, application.ValidTill)
	payload, err := s.renderer.Render(text)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pass payload")
	}
	return payload, nil
}

// PassText builds the human-readable pass line that gets encoded into the
// machine-readable payload.
func PassText(from, to string, duration enums.PassDuration, validTill time.Time) string {
	return fmt.Sprintf("From: %s, To: %s, Duration: %s, Valid Till: %s",
		from, to, duration, FormatValidTill(validTill))
}

// FormatValidTill renders the expiry date as shown on the pass and in
// expiry-reminder notifications.
func FormatValidTill(validTill time.Time) string {
	return validTill.Format(validTillLayout)
}

// validTillFrom computes the pass expiry: the UTC calendar date of now plus
// the duration's day count, truncated to midnight.
func validTillFrom(now time.Time, duration enums.PassDuration) time.Time {
	expiry := now.UTC().AddDate(0, 0, duration.Days())
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
}

func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}
