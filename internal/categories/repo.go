package categories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/harlowprint/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// Repository encapsulates catalogue persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalogue repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the catalogue ordered by kind then position.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Order("kind ASC").
		Order("position ASC").
		Order("name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return rows, nil
}

// Get fetches one catalogue entry by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching category")
	}
	return &row, nil
}

// Create inserts a catalogue entry. Duplicate kind+name pairs are rejected.
func (r *Repository) Create(ctx context.Context, entry *models.Category) error {
	var existing int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("kind = ? AND LOWER(name) = ?", entry.Kind, strings.ToLower(entry.Name)).
		Count(&existing).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for duplicate category")
	}
	if existing > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return nil
}

// Update rewrites the name and position of an existing entry.
func (r *Repository) Update(ctx context.Context, id int64, name string, position int) (*models.Category, error) {
	row, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Name = name
	row.Position = position
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}
	return row, nil
}

// Delete removes an entry, reporting not found when nothing matched.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting category")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}
