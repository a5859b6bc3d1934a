package pricing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/harlowprint/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// RunRepository persists pricing run history rows.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository constructs a run repository bound to the provided gorm DB.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ RunRecorder = (*RunRepository)(nil)

// StartRun inserts the row for a run that just began.
func (r *RunRepository) StartRun(ctx context.Context, runID, scope string) error {
	row := models.PricingRun{
		ID:     runID,
		Scope:  scope,
		Status: models.RunStatusRunning,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording run start")
	}
	return nil
}

// FinishRun finalizes a run with its counts and terminal status.
func (r *RunRepository) FinishRun(ctx context.Context, runID string, successful, failed, skipped int, status string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.PricingRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"successful":  successful,
			"failed":      failed,
			"skipped":     skipped,
			"status":      status,
			"finished_at": &now,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "recording run finish")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "run not found")
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.PricingRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.PricingRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing runs")
	}
	return rows, nil
}

// GetRun fetches a single run by ID.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*models.PricingRun, error) {
	var row models.PricingRun
	err := r.db.WithContext(ctx).First(&row, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "run not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching run")
	}
	return &row, nil
}
