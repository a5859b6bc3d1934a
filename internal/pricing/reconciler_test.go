package pricing

import (
	"context"
	"fmt"
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

// fakeVariantPlatform implements VariantPlatform in memory.
type fakeVariantPlatform struct {
	existingGIDs []string
	gidsErr      error
	deleteErr    error
	replaceErr   error
	optionNames  []string

	deletedGIDs      []string
	replacedOptions  []shopify.ProductOption
	replacedVariants []shopify.Variant
	bulkBatches      [][]map[string]any
	updatedVariants  []shopify.Variant

	nextID int64
}

func (f *fakeVariantPlatform) GetVariantGIDs(context.Context, int64) ([]string, error) {
	return f.existingGIDs, f.gidsErr
}

func (f *fakeVariantPlatform) BulkDeleteVariants(_ context.Context, _ int64, gids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedGIDs = append(f.deletedGIDs, gids...)
	return nil
}

func (f *fakeVariantPlatform) ReplaceProductVariants(_ context.Context, _ int64, options []shopify.ProductOption, variants []shopify.Variant) ([]shopify.Variant, error) {
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	f.replacedOptions = options
	f.replacedVariants = variants
	out := make([]shopify.Variant, len(variants))
	for i, v := range variants {
		f.nextID++
		v.ID = f.nextID
		out[i] = v
	}
	return out, nil
}

func (f *fakeVariantPlatform) BulkCreateVariants(_ context.Context, _ int64, variants []map[string]any) ([]shopify.CreatedVariant, error) {
	f.bulkBatches = append(f.bulkBatches, variants)
	out := make([]shopify.CreatedVariant, 0, len(variants))
	for _, input := range variants {
		f.nextID++
		selected := make(map[string]string)
		for _, ov := range input["optionValues"].([]map[string]string) {
			selected[ov["optionName"]] = ov["name"]
		}
		out = append(out, shopify.CreatedVariant{
			GID:             fmt.Sprintf("gid://shopify/ProductVariant/%d", f.nextID),
			Price:           input["price"].(string),
			SelectedOptions: selected,
		})
	}
	return out, nil
}

func (f *fakeVariantPlatform) GetProductOptionNames(context.Context, int64) ([]string, error) {
	return f.optionNames, nil
}

func (f *fakeVariantPlatform) UpdateVariant(_ context.Context, v shopify.Variant) error {
	f.updatedVariants = append(f.updatedVariants, v)
	return nil
}

func newTestReconciler(platform VariantPlatform) *Reconciler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	rec := NewReconciler(platform, config.PricingConfig{
		VariantBatchSize: 25,
		InterBatchDelay:  time.Millisecond,
		LargeBatchDelay:  time.Millisecond,
	}, logg)
	rec.sleep = func(time.Duration) {}
	return rec
}

func TestReconcileReplacesExistingVariants(t *testing.T) {
	fake := &fakeVariantPlatform{
		existingGIDs: []string{shopify.VariantGID(1), shopify.VariantGID(2)},
	}
	rec := newTestReconciler(fake)

	candidates := BuildVariants(
		[]PriceBand{band(1, 10, "5.00")},
		[]PriceBand{band(1, 10, "8.00")},
		"SKU", 100, nil, nil)
	confirmed, err := rec.Reconcile(context.Background(), 7, candidates, false)
	require.NoError(t, err)

	assert.Len(t, fake.deletedGIDs, 2)
	require.Len(t, confirmed, 2)
	assert.NotZero(t, confirmed[0].ID)
	assert.Equal(t, "1-10", confirmed[0].Option1)
	assert.Equal(t, "Trade", confirmed[0].Option2)

	require.Len(t, fake.replacedOptions, 2)
	assert.Equal(t, OptionQuantity, fake.replacedOptions[0].Name)
	assert.Equal(t, []string{"1-10"}, fake.replacedOptions[0].Values)
	assert.Equal(t, OptionCustomerType, fake.replacedOptions[1].Name)
}

func TestReconcileProceedsPastLastVariantRefusal(t *testing.T) {
	fake := &fakeVariantPlatform{
		existingGIDs: []string{shopify.VariantGID(1)},
		deleteErr:    shopify.ErrLastVariant,
	}
	rec := newTestReconciler(fake)

	candidates := BuildVariants([]PriceBand{band(1, 10, "5.00")}, nil, "S", 0, nil, nil)
	confirmed, err := rec.Reconcile(context.Background(), 7, candidates, false)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
	assert.Empty(t, fake.deletedGIDs)
	assert.NotEmpty(t, fake.replacedVariants)
}

func TestReconcileAbortsOnZeroCreatedVariants(t *testing.T) {
	// Platform accepts the replace but reports nothing created.
	fake := &emptyReplacePlatform{fakeVariantPlatform: &fakeVariantPlatform{}}
	rec := newTestReconciler(fake)

	candidates := []CandidateVariant{{Price: "1.00", Option1: "1-10", Option2: "Trade"}}
	_, err := rec.Reconcile(context.Background(), 7, candidates, false)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

type emptyReplacePlatform struct {
	*fakeVariantPlatform
}

func (e *emptyReplacePlatform) ReplaceProductVariants(context.Context, int64, []shopify.ProductOption, []shopify.Variant) ([]shopify.Variant, error) {
	return nil, nil
}

func TestReconcileBatchesLargeVariantSets(t *testing.T) {
	fake := &fakeVariantPlatform{
		optionNames: []string{OptionQuantity, OptionCustomerType},
	}
	rec := newTestReconciler(fake)

	var trade, endc []PriceBand
	for i := 0; i < 60; i++ {
		trade = append(trade, band(i*10+1, i*10+10, "5.00"))
		endc = append(endc, band(i*10+1, i*10+10, "8.00"))
	}
	candidates := BuildVariants(trade, endc, "SKU", 50, nil, nil)
	require.Len(t, candidates, 120)

	confirmed, err := rec.Reconcile(context.Background(), 7, candidates, false)
	require.NoError(t, err)
	assert.Len(t, confirmed, 120)
	assert.Len(t, fake.bulkBatches, 5)
	assert.Len(t, fake.bulkBatches[0], 25)
	assert.Len(t, fake.bulkBatches[4], 20)

	// SKU and weight are backfilled per created variant.
	assert.Len(t, fake.updatedVariants, 120)
	assert.Equal(t, "SKU", fake.updatedVariants[0].SKU)
	assert.Equal(t, 50, fake.updatedVariants[0].Weight)
}

func TestEnrichBandsMatchesAndDrops(t *testing.T) {
	rec := newTestReconciler(&fakeVariantPlatform{})
	bands := []PriceBand{band(1, 10, "5.005"), band(11, 20, "4.00")}
	confirmed := []ConfirmedVariant{
		{ID: 101, Option1: "1-10", Option2: "Trade"},
		{ID: 102, Option1: "1-10", Option2: "End Customer"},
	}

	enriched := rec.EnrichBands(context.Background(), bands, confirmed, CustomerTrade)
	require.Len(t, enriched, 1)
	assert.Equal(t, int64(101), enriched[0].VariantID)
	assert.Equal(t, "5.01", enriched[0].Price)
	assert.Equal(t, 1, enriched[0].Min)
	assert.Equal(t, 10, enriched[0].Max)
}

func TestEnrichBandsDegradedColourMatch(t *testing.T) {
	rec := newTestReconciler(&fakeVariantPlatform{})
	bands := []PriceBand{band(1, 10, "5.00")}
	confirmed := []ConfirmedVariant{
		{ID: 201, Option1: "Red", Option2: "1-10", Option3: "Trade"},
		{ID: 202, Option1: "Blue", Option2: "1-10", Option3: "Trade"},
	}

	enriched := rec.EnrichBands(context.Background(), bands, confirmed, CustomerTrade)
	require.Len(t, enriched, 1)
	// First colour variant wins on the degraded path.
	assert.Equal(t, int64(201), enriched[0].VariantID)
}
