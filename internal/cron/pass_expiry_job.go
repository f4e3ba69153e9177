package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/transitpass/transitpass-backend/internal/applications"
	"github.com/transitpass/transitpass-backend/pkg/db/models"
	"github.com/transitpass/transitpass-backend/pkg/logger"
)

// sweepMarkerTTL keeps the day marker long enough to survive restarts within
// the same day while letting stale markers age out on their own.
const sweepMarkerTTL = 48 * time.Hour

const expiryReminderFmt = "Your bus pass will expire on %s. Please renew."

type expiringPassRepo interface {
	FindApprovedExpiringOn(ctx context.Context, date time.Time) ([]models.Application, error)
}

type reminderNotifier interface {
	NotifyUser(ctx context.Context, applicantID uuid.UUID, message string) error
}

type sweepMarkerStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	SweepMarkerKey(day string) string
}

// PassExpiryJobParams carry the expiry sweep dependencies.
type PassExpiryJobParams struct {
	Logger       *logger.Logger
	Applications expiringPassRepo
	Notifier     reminderNotifier
	Marker       sweepMarkerStore
}

// NewPassExpiryJob builds the daily expiry sweep.
func NewPassExpiryJob(params PassExpiryJobParams) (*PassExpiryJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Applications == nil {
		return nil, fmt.Errorf("applications repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Marker == nil {
		return nil, fmt.Errorf("marker store required")
	}
	return &PassExpiryJob{
		logg:         params.Logger,
		applications: params.Applications,
		notifier:     params.Notifier,
		marker:       params.Marker,
		now:          time.Now,
	}, nil
}

// PassExpiryJob reminds holders of approved passes that expire tomorrow. It
// reads and notifies only; no application state changes. Reminders are not
// individually deduplicated, so a per-day marker bounds the sweep to at most
// one run per calendar day even across restarts and multiple instances.
type PassExpiryJob struct {
	logg         *logger.Logger
	applications expiringPassRepo
	notifier     reminderNotifier
	marker       sweepMarkerStore
	now          func() time.Time
}

func (j *PassExpiryJob) Name() string { return "pass-expiry-sweep" }

func (j *PassExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	key := j.marker.SweepMarkerKey(today.Format("2006-01-02"))
	first, err := j.marker.SetNX(ctx, key, "1", sweepMarkerTTL)
	if err != nil {
		return fmt.Errorf("set sweep marker: %w", err)
	}
	if !first {
		j.logg.Info(ctx, "expiry sweep already ran today; skipping")
		return nil
	}

	expiring, err := j.applications.FindApprovedExpiringOn(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("find expiring passes: %w", err)
	}

	var errs error
	reminded := 0
	for _, application := range expiring {
		message := fmt.Sprintf(expiryReminderFmt, applications.FormatValidTill(application.ValidTill))
		if err := j.notifier.NotifyUser(ctx, application.ApplicantID, message); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remind applicant %s: %w", application.ApplicantID, err))
			continue
		}
		reminded++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expiring_on": tomorrow.Format("2006-01-02"),
		"matched":     len(expiring),
		"reminded":    reminded,
	})
	j.logg.Info(logCtx, "expiry sweep complete")
	return errs
}
