package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Products above this variant count go through batched GraphQL creation
// instead of a single REST product PUT.
const largeVariantThreshold = 100

// VariantPlatform is the slice of the platform client the reconciler needs.
type VariantPlatform interface {
	GetVariantGIDs(ctx context.Context, productID int64) ([]string, error)
	BulkDeleteVariants(ctx context.Context, productID int64, variantGIDs []string) error
	BulkCreateVariants(ctx context.Context, productID int64, variants []map[string]any) ([]shopify.CreatedVariant, error)
	ReplaceProductVariants(ctx context.Context, productID int64, options []shopify.ProductOption, variants []shopify.Variant) ([]shopify.Variant, error)
	GetProductOptionNames(ctx context.Context, productID int64) ([]string, error)
	UpdateVariant(ctx context.Context, variant shopify.Variant) error
}

// Reconciler drives one product's variant set to match the synthesized
// candidates. Delete and recreate are separate platform calls, so a
// crash between them leaves the product without its variants until the
// next run; there is no compensation.
type Reconciler struct {
	platform VariantPlatform
	cfg      config.PricingConfig
	log      *logger.Logger
	sleep    func(time.Duration)
}

func NewReconciler(platform VariantPlatform, cfg config.PricingConfig, log *logger.Logger) *Reconciler {
	return &Reconciler{
		platform: platform,
		cfg:      cfg,
		log:      log,
		sleep:    time.Sleep,
	}
}

// Reconcile replaces the product's variants with the candidate set and
// returns the variants the platform confirmed. A delete refusal on the
// last remaining variant is not fatal: the replace call overwrites it.
// Zero confirmed variants is an error so the caller never persists
// metafields pointing at nothing.
func (r *Reconciler) Reconcile(ctx context.Context, productID int64, candidates []CandidateVariant, hasColours bool) ([]ConfirmedVariant, error) {
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no candidate variants to reconcile")
	}

	gids, err := r.platform.GetVariantGIDs(ctx, productID)
	if err != nil {
		r.log.Warn(r.log.WithField(ctx, "error", err.Error()), "could not fetch existing variants, continuing")
	}
	if len(gids) > 0 {
		switch err := r.platform.BulkDeleteVariants(ctx, productID, gids); {
		case err == nil:
			// Give the platform a beat before recreating on top.
			r.sleep(time.Second)
		case errors.Is(err, shopify.ErrLastVariant):
			r.log.Info(ctx, "cannot delete last variant, replacing in place")
		default:
			r.log.Warn(r.log.WithField(ctx, "error", err.Error()), "variant delete failed, continuing with replace")
		}
	}

	var confirmed []ConfirmedVariant
	if len(candidates) > largeVariantThreshold {
		confirmed, err = r.createBatched(ctx, productID, candidates, hasColours)
	} else {
		confirmed, err = r.replaceViaREST(ctx, productID, candidates, hasColours)
	}
	if err != nil {
		return nil, err
	}
	if len(confirmed) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("platform created no variants for product %d", productID))
	}
	return confirmed, nil
}

// replaceViaREST PUTs the full option and variant set in one call.
func (r *Reconciler) replaceViaREST(ctx context.Context, productID int64, candidates []CandidateVariant, hasColours bool) ([]ConfirmedVariant, error) {
	options := buildOptions(candidates, hasColours)
	variants := make([]shopify.Variant, 0, len(candidates))
	for _, c := range candidates {
		variants = append(variants, candidateToREST(c))
	}

	replaced, err := r.platform.ReplaceProductVariants(ctx, productID, options, variants)
	if err != nil {
		return nil, err
	}
	confirmed := make([]ConfirmedVariant, 0, len(replaced))
	for _, v := range replaced {
		if v.ID == 0 {
			continue
		}
		confirmed = append(confirmed, ConfirmedVariant{
			ID:      v.ID,
			Option1: v.Option1,
			Option2: v.Option2,
			Option3: v.Option3,
		})
	}
	return confirmed, nil
}

// createBatched handles very large variant sets through the GraphQL bulk
// create mutation in fixed-size batches. The product's option structure
// must already match; if it does not, the REST replace path is used so
// the options get rewritten alongside the variants.
func (r *Reconciler) createBatched(ctx context.Context, productID int64, candidates []CandidateVariant, hasColours bool) ([]ConfirmedVariant, error) {
	required := requiredOptionNames(hasColours)
	current, err := r.platform.GetProductOptionNames(ctx, productID)
	if err != nil || !sameNameSet(current, required) {
		r.log.Info(ctx, "product options need rewriting, using full replace for large variant set")
		return r.replaceViaREST(ctx, productID, candidates, hasColours)
	}

	batchSize := r.cfg.VariantBatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	interBatch := r.cfg.InterBatchDelay
	if len(candidates) > 2*largeVariantThreshold {
		interBatch = r.cfg.LargeBatchDelay
	}

	var confirmed []ConfirmedVariant
	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := make([]map[string]any, 0, end-start)
		for _, c := range candidates[start:end] {
			batch = append(batch, candidateToBulkInput(c, hasColours))
		}

		created, err := r.platform.BulkCreateVariants(ctx, productID, batch)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("creating variant batch starting at %d", start))
		}
		for _, cv := range created {
			confirmed = append(confirmed, confirmedFromCreated(cv, hasColours))
		}
		if end < len(candidates) {
			r.sleep(interBatch)
		}
	}

	r.backfillVariantFields(ctx, confirmed, candidates)
	return confirmed, nil
}

// backfillVariantFields sets SKU, weight and shipping flags on variants
// created via GraphQL, which does not accept those fields on create.
func (r *Reconciler) backfillVariantFields(ctx context.Context, confirmed []ConfirmedVariant, candidates []CandidateVariant) {
	byTuple := make(map[string]CandidateVariant, len(candidates))
	for _, c := range candidates {
		byTuple[optionKey(c.Option1, c.Option2, c.Option3)] = c
	}
	for _, cv := range confirmed {
		c, ok := byTuple[optionKey(cv.Option1, cv.Option2, cv.Option3)]
		if !ok {
			continue
		}
		variant := candidateToREST(c)
		variant.ID = cv.ID
		if err := r.platform.UpdateVariant(ctx, variant); err != nil {
			r.log.Warn(r.log.WithField(ctx, "variant_id", cv.ID), "could not backfill sku/weight on created variant")
		}
		r.sleep(200 * time.Millisecond)
	}
}

// EnrichBands matches every band to the confirmed variant carrying its
// label and customer type, injecting the platform variant ID and the
// reformatted price. Bands without a match are dropped, never invented.
// Products whose confirmed variants carry a colour in option1 are
// matched on (option2, option3) instead, first colour wins; that match
// is degraded and logged as such.
func (r *Reconciler) EnrichBands(ctx context.Context, bands []PriceBand, confirmed []ConfirmedVariant, customerType CustomerType) []EnrichedBand {
	enriched := make([]EnrichedBand, 0, len(bands))
	for _, band := range bands {
		label := band.Label()
		match, degraded := matchVariant(confirmed, label, customerType)
		if match == nil {
			continue
		}
		if degraded {
			r.log.Warn(r.log.WithFields(ctx, map[string]any{
				"label":   label,
				"tier":    string(customerType),
				"variant": match.ID,
				"colour":  match.Option1,
			}), "degraded band match ignoring colour, first colour variant wins")
		}
		enriched = append(enriched, EnrichedBand{
			Min:       band.Min,
			Max:       band.Max,
			Price:     FormatPrice(band.Price),
			VariantID: match.ID,
		})
	}
	return enriched
}

func matchVariant(confirmed []ConfirmedVariant, label string, customerType CustomerType) (*ConfirmedVariant, bool) {
	for i := range confirmed {
		if confirmed[i].Option1 == label && confirmed[i].Option2 == string(customerType) {
			return &confirmed[i], false
		}
	}
	for i := range confirmed {
		if confirmed[i].Option2 == label && confirmed[i].Option3 == string(customerType) {
			return &confirmed[i], true
		}
	}
	return nil, false
}

func requiredOptionNames(hasColours bool) []string {
	if hasColours {
		return []string{OptionColour, OptionQuantity, OptionCustomerType}
	}
	return []string{OptionQuantity, OptionCustomerType}
}

func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}

// buildOptions derives the product option definitions, values collected
// from the candidates and sorted for a stable payload.
func buildOptions(candidates []CandidateVariant, hasColours bool) []shopify.ProductOption {
	names := requiredOptionNames(hasColours)
	values := make(map[string]map[string]struct{}, len(names))
	for _, name := range names {
		values[name] = make(map[string]struct{})
	}
	for _, c := range candidates {
		if hasColours {
			values[OptionColour][c.Option1] = struct{}{}
			values[OptionQuantity][c.Option2] = struct{}{}
			values[OptionCustomerType][c.Option3] = struct{}{}
		} else {
			values[OptionQuantity][c.Option1] = struct{}{}
			values[OptionCustomerType][c.Option2] = struct{}{}
		}
	}

	options := make([]shopify.ProductOption, 0, len(names))
	for _, name := range names {
		var sorted []string
		for v := range values[name] {
			if v != "" {
				sorted = append(sorted, v)
			}
		}
		sort.Strings(sorted)
		options = append(options, shopify.ProductOption{Name: name, Values: sorted})
	}
	return options
}

func candidateToREST(c CandidateVariant) shopify.Variant {
	return shopify.Variant{
		Price:               c.Price,
		SKU:                 c.SKU,
		Option1:             c.Option1,
		Option2:             c.Option2,
		Option3:             c.Option3,
		Weight:              c.Weight,
		WeightUnit:          variantWeightUnit,
		Taxable:             true,
		InventoryManagement: nil,
		InventoryPolicy:     variantInventoryPolicy,
		RequiresShipping:    true,
	}
}

func candidateToBulkInput(c CandidateVariant, hasColours bool) map[string]any {
	var optionValues []map[string]string
	if hasColours {
		optionValues = []map[string]string{
			{"optionName": OptionColour, "name": c.Option1},
			{"optionName": OptionQuantity, "name": c.Option2},
			{"optionName": OptionCustomerType, "name": c.Option3},
		}
	} else {
		optionValues = []map[string]string{
			{"optionName": OptionQuantity, "name": c.Option1},
			{"optionName": OptionCustomerType, "name": c.Option2},
		}
	}
	return map[string]any{
		"price":        c.Price,
		"optionValues": optionValues,
	}
}

func confirmedFromCreated(cv shopify.CreatedVariant, hasColours bool) ConfirmedVariant {
	if hasColours {
		return ConfirmedVariant{
			ID:      shopify.NumericID(cv.GID),
			Option1: cv.SelectedOptions[OptionColour],
			Option2: cv.SelectedOptions[OptionQuantity],
			Option3: cv.SelectedOptions[OptionCustomerType],
		}
	}
	return ConfirmedVariant{
		ID:      shopify.NumericID(cv.GID),
		Option1: cv.SelectedOptions[OptionQuantity],
		Option2: cv.SelectedOptions[OptionCustomerType],
	}
}

func optionKey(o1, o2, o3 string) string {
	return o1 + "\x00" + o2 + "\x00" + o3
}
