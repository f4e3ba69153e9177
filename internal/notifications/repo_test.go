package notifications

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  applicant_id TEXT,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM notifications`).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, applicantID *uuid.UUID, message string, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()

	row := models.Notification{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		Message:     message,
		ReadAt:      readAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepository_CreateAssignsID(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	applicantID := uuid.New()
	row := &models.Notification{
		ApplicantID: &applicantID,
		Message:     "Your bus pass has been approved!",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, row))
	assert.NotEqual(t, uuid.Nil, row.ID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepository_FindUnread_OrdersMostRecentFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	applicantID := uuid.New()
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	older := seedNotification(t, db, &applicantID, "older", base.Add(-2*time.Hour), nil)
	newer := seedNotification(t, db, &applicantID, "newer", base, nil)

	readAt := base.Add(-time.Hour)
	seedNotification(t, db, &applicantID, "already read", base.Add(-30*time.Minute), &readAt)
	otherID := uuid.New()
	seedNotification(t, db, &otherID, "someone else", base, nil)
	seedNotification(t, db, nil, "admin only", base, nil)

	rows, err := repo.FindUnread(ctx, ForApplicant(applicantID))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestRepository_FindUnread_AdminInboxScope(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	applicantID := uuid.New()
	seedNotification(t, db, &applicantID, "for an applicant", time.Now().UTC(), nil)
	admin := seedNotification(t, db, nil, "pending review", time.Now().UTC(), nil)

	rows, err := repo.FindUnread(ctx, AdminInbox())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, admin.ID, rows[0].ID)
}

func TestRepository_MarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	applicantID := uuid.New()
	seedNotification(t, db, &applicantID, "one", time.Now().UTC().Add(-time.Minute), nil)
	seedNotification(t, db, &applicantID, "two", time.Now().UTC(), nil)
	otherID := uuid.New()
	untouched := seedNotification(t, db, &otherID, "other inbox", time.Now().UTC(), nil)

	now := time.Now().UTC()
	updated, err := repo.MarkAllRead(ctx, ForApplicant(applicantID), now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	rows, err := repo.FindUnread(ctx, ForApplicant(applicantID))
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Marking again is a no-op, not an error.
	updated, err = repo.MarkAllRead(ctx, ForApplicant(applicantID), now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated)

	var other models.Notification
	require.NoError(t, db.First(&other, "id = ?", untouched.ID).Error)
	assert.Nil(t, other.ReadAt)
}

func TestRepository_ExistsUnreadAdminMatching(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedNotification(t, db, nil, "New bus pass application pending review from Asha Verma", time.Now().UTC(), nil)

	exists, err := repo.ExistsUnreadAdminMatching(ctx, "asha verma")
	require.NoError(t, err)
	assert.True(t, exists, "match must be case-insensitive")

	exists, err = repo.ExistsUnreadAdminMatching(ctx, "Ravi Kumar")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_ExistsUnreadAdminMatching_IgnoresReadAndApplicantRows(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	readAt := time.Now().UTC()
	seedNotification(t, db, nil, "pending review from Asha Verma", time.Now().UTC(), &readAt)
	applicantID := uuid.New()
	seedNotification(t, db, &applicantID, "pending review from Asha Verma", time.Now().UTC(), nil)

	exists, err := repo.ExistsUnreadAdminMatching(ctx, "Asha Verma")
	require.NoError(t, err)
	assert.False(t, exists, "read rows and applicant rows must not suppress a new alert")
}
