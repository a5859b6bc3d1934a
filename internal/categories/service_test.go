package categories

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowprint/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

type fakeStore struct {
	entries []models.Category
	nextID  int64
}

func (f *fakeStore) List(context.Context) ([]models.Category, error) {
	return f.entries, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*models.Category, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (f *fakeStore) Create(_ context.Context, entry *models.Category) error {
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, name string, position int) (*models.Category, error) {
	entry, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Name = name
	entry.Position = position
	return entry, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

type fakeCollectionPlatform struct {
	collections []shopify.SmartCollection

	created []shopify.SmartCollection
	updated []shopify.SmartCollection
}

func (f *fakeCollectionPlatform) ListSmartCollections(context.Context) ([]shopify.SmartCollection, error) {
	return f.collections, nil
}

func (f *fakeCollectionPlatform) CreateSmartCollection(_ context.Context, c shopify.SmartCollection) (*shopify.SmartCollection, error) {
	c.ID = int64(1000 + len(f.created))
	f.created = append(f.created, c)
	return &c, nil
}

func (f *fakeCollectionPlatform) UpdateSmartCollection(_ context.Context, c shopify.SmartCollection) error {
	f.updated = append(f.updated, c)
	return nil
}

func newCategoryService(t *testing.T, store *fakeStore, platform *fakeCollectionPlatform) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:    store,
		Platform: platform,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newCategoryService(t, &fakeStore{}, &fakeCollectionPlatform{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "  ", Kind: "category"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Create(context.Background(), CreateInput{Name: "Signage", Kind: "group"})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	created, err := svc.Create(context.Background(), CreateInput{Name: " Signage ", Kind: "Category"})
	require.NoError(t, err)
	assert.Equal(t, "Signage", created.Name)
	assert.Equal(t, models.CategoryKindCategory, created.Kind)
	assert.NotZero(t, created.ID)
}

func TestSyncCreatesAndUpdatesByTitle(t *testing.T) {
	store := &fakeStore{entries: []models.Category{
		{ID: 1, Name: "Business Cards", Kind: models.CategoryKindCategory},
		{ID: 2, Name: "Flyers", Kind: models.CategoryKindCategory},
		{ID: 3, Name: "Folded", Kind: models.CategoryKindSubcategory},
	}}
	platform := &fakeCollectionPlatform{collections: []shopify.SmartCollection{
		{ID: 55, Title: "business cards"},
		{ID: 56, Title: "Banners"},
	}}
	svc := newCategoryService(t, store, platform)

	result, err := svc.SyncCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 3, result.Total)

	// The title match is case-insensitive and carries the existing ID.
	require.Len(t, platform.updated, 1)
	assert.Equal(t, int64(55), platform.updated[0].ID)
	require.Len(t, platform.updated[0].Rules, 1)
	assert.Equal(t, shopify.CollectionRule{
		Column: "tag", Relation: "equals", Condition: "Business Cards",
	}, platform.updated[0].Rules[0])

	require.Len(t, platform.created, 2)
	assert.Equal(t, "Flyers", platform.created[0].Title)
	assert.Equal(t, "Folded", platform.created[1].Title)
}

func TestSyncWithEmptyCatalogue(t *testing.T) {
	platform := &fakeCollectionPlatform{}
	svc := newCategoryService(t, &fakeStore{}, platform)

	result, err := svc.SyncCollections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Empty(t, platform.created)
}

func TestDeleteMissingEntry(t *testing.T) {
	svc := newCategoryService(t, &fakeStore{}, &fakeCollectionPlatform{})

	err := svc.Delete(context.Background(), 42)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
