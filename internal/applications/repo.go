package applications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transitpass/transitpass-backend/pkg/db/models"
	"github.com/transitpass/transitpass-backend/pkg/enums"
	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

// Repository exposes persistence helpers for pass applications.
type Repository interface {
	Create(ctx context.Context, application *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByStatus(ctx context.Context, status enums.ApplicationStatus) ([]models.Application, error)
	FindLatestByApplicant(ctx context.Context, applicantID uuid.UUID) (*models.Application, error)
	UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, expected, next enums.ApplicationStatus, fields map[string]any) (int64, error)
	FindApprovedExpiringOn(ctx context.Context, date time.Time) ([]models.Application, error)
	CountByStatus(ctx context.Context) (map[enums.ApplicationStatus]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an applications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, application *models.Application) error {
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "application not found")
		}
		return nil, err
	}
	return &application, nil
}

func (r *repositoryImpl) FindByStatus(ctx context.Context, status enums.ApplicationStatus) ([]models.Application, error) {
	var applications []models.Application
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("applied_at DESC, id DESC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repositoryImpl) FindLatestByApplicant(ctx context.Context, applicantID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("applied_at DESC, id DESC").
		First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no applications for applicant")
		}
		return nil, err
	}
	return &application, nil
}

// UpdateStatusIfCurrent flips the status only while the row still holds the
// expected status, so concurrent decisions on the same application have
// exactly one winner. Extra columns for the new state ride along in fields.
func (r *repositoryImpl) UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, expected, next enums.ApplicationStatus, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": next}
	for column, value := range fields {
		updates[column] = value
	}

	result := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) FindApprovedExpiringOn(ctx context.Context, date time.Time) ([]models.Application, error) {
	var applications []models.Application
	if err := r.db.WithContext(ctx).
		Where("status = ? AND valid_till = ?", enums.ApplicationStatusApproved, date).
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repositoryImpl) CountByStatus(ctx context.Context) (map[enums.ApplicationStatus]int64, error) {
	type statusCount struct {
		Status enums.ApplicationStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
