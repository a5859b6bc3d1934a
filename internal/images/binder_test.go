package images

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

type fakeImagePlatform struct {
	product     shopify.Product
	variants    []shopify.Variant
	listErrs    int
	assignments map[int64][]int64
	listCalls   int
}

func (f *fakeImagePlatform) GetProduct(context.Context, int64) (*shopify.Product, error) {
	p := f.product
	return &p, nil
}

func (f *fakeImagePlatform) ListProductVariants(context.Context, int64) ([]shopify.Variant, error) {
	f.listCalls++
	if f.listErrs > 0 {
		f.listErrs--
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "not yet")
	}
	return f.variants, nil
}

func (f *fakeImagePlatform) AssignImageToVariants(_ context.Context, _ int64, imageID int64, variantIDs []int64) error {
	if f.assignments == nil {
		f.assignments = make(map[int64][]int64)
	}
	f.assignments[imageID] = append(f.assignments[imageID], variantIDs...)
	return nil
}

func newTestBinder(platform Platform) *Binder {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	b := NewBinder(platform, config.PricingConfig{ConsistencyRetries: 3}, logg)
	b.sleep = func(time.Duration) {}
	return b
}

func TestBindMainImageNoColours(t *testing.T) {
	fake := &fakeImagePlatform{
		product: shopify.Product{
			ID:    7,
			Image: &shopify.Image{ID: 900},
		},
		variants: []shopify.Variant{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	binder := newTestBinder(fake)

	require.NoError(t, binder.BindMainImage(context.Background(), 7, nil, nil))
	assert.Equal(t, []int64{1, 2, 3}, fake.assignments[900])
}

func TestBindMainImageSkipsWithoutPrimaryImage(t *testing.T) {
	fake := &fakeImagePlatform{product: shopify.Product{ID: 7}}
	binder := newTestBinder(fake)

	require.NoError(t, binder.BindMainImage(context.Background(), 7, nil, nil))
	assert.Empty(t, fake.assignments)
	assert.Zero(t, fake.listCalls)
}

func TestBindMainImageColourMappingWithFallback(t *testing.T) {
	images := []shopify.Image{
		{ID: 900, Src: "https://cdn/x/main.png"},
		{ID: 901, Src: "https://cdn/x/red-card.png"},
		{ID: 902, Src: "https://cdn/x/second.png", Alt: "the blue one"},
	}
	fake := &fakeImagePlatform{
		product: shopify.Product{
			ID:     7,
			Image:  &images[0],
			Images: images,
		},
		variants: []shopify.Variant{
			{ID: 1, Option1: "Red"},
			{ID: 2, Option1: "Blue"},
			{ID: 3, Option1: "Green"},
		},
	}
	binder := newTestBinder(fake)

	// Red resolves by filename, Blue by alt text, Green falls back to
	// the primary image.
	require.NoError(t, binder.BindMainImage(context.Background(), 7,
		[]string{"Red", "Blue", "Green"}, nil))
	assert.Equal(t, []int64{1}, fake.assignments[901])
	assert.Equal(t, []int64{2}, fake.assignments[902])
	assert.Equal(t, []int64{3}, fake.assignments[900])
}

func TestBindMainImageExplicitIndexWins(t *testing.T) {
	images := []shopify.Image{
		{ID: 900, Src: "https://cdn/x/main.png"},
		{ID: 901, Src: "https://cdn/x/other.png"},
	}
	fake := &fakeImagePlatform{
		product: shopify.Product{
			ID:     7,
			Image:  &images[0],
			Images: images,
		},
		variants: []shopify.Variant{{ID: 1, Option1: "Red"}},
	}
	binder := newTestBinder(fake)

	require.NoError(t, binder.BindMainImage(context.Background(), 7,
		[]string{"Red"}, map[string]int{"Red": 1}))
	assert.Equal(t, []int64{1}, fake.assignments[901])
}

func TestBindMainImageRetriesUntilVariantsVisible(t *testing.T) {
	fake := &fakeImagePlatform{
		product: shopify.Product{
			ID:    7,
			Image: &shopify.Image{ID: 900},
		},
		variants: []shopify.Variant{{ID: 1}},
		listErrs: 2,
	}
	binder := newTestBinder(fake)

	require.NoError(t, binder.BindMainImage(context.Background(), 7, nil, nil))
	assert.Equal(t, 3, fake.listCalls)
	assert.Equal(t, []int64{1}, fake.assignments[900])
}

func TestBindMainImageGivesUpAfterRetries(t *testing.T) {
	fake := &fakeImagePlatform{
		product: shopify.Product{
			ID:    7,
			Image: &shopify.Image{ID: 900},
		},
		listErrs: 10,
	}
	binder := newTestBinder(fake)

	err := binder.BindMainImage(context.Background(), 7, nil, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConsistency, typed.Code())
}
