package applicants

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

func setupApplicantsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS applicants (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM applicants`).Error)
	return db
}

func TestRepository_FindByID(t *testing.T) {
	db := setupApplicantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := models.Applicant{ID: uuid.New(), Username: "asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(&row).Error)

	loaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", loaded.Username)

	_, err = repo.FindByID(ctx, uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestRepository_Exists(t *testing.T) {
	db := setupApplicantsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := models.Applicant{ID: uuid.New(), Username: "ravi", Email: "ravi@example.com"}
	require.NoError(t, db.Create(&row).Error)

	exists, err := repo.Exists(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}
