package applicants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

// Repository exposes read access to applicant records. The rows are owned by
// the external user-management service; nothing here writes them.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an applicants repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.WithContext(ctx).First(&applicant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "applicant not found")
		}
		return nil, err
	}
	return &applicant, nil
}

func (r *repositoryImpl) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Applicant{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
