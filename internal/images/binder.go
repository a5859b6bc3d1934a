package images

import (
	"context"
	"strings"
	"time"

	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Platform is the slice of the platform client the binder needs.
type Platform interface {
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	ListProductVariants(ctx context.Context, productID int64) ([]shopify.Variant, error)
	AssignImageToVariants(ctx context.Context, productID, imageID int64, variantIDs []int64) error
}

// Binder points product images at the variants they belong to. Variant
// creation is eventually consistent on the platform side, so the binder
// re-fetches a bounded number of times before giving up.
type Binder struct {
	platform Platform
	cfg      config.PricingConfig
	log      *logger.Logger
	sleep    func(time.Duration)
}

func NewBinder(platform Platform, cfg config.PricingConfig, log *logger.Logger) *Binder {
	return &Binder{
		platform: platform,
		cfg:      cfg,
		log:      log,
		sleep:    time.Sleep,
	}
}

// BindMainImage assigns images to every variant of the product. Without
// colours the primary image covers all variants. With colours, each
// colour's variants get the image picked by the explicit index mapping
// or, failing that, a filename/alt-text match; variants left over fall
// back to the primary image. A product without a primary image is
// skipped without error.
func (b *Binder) BindMainImage(ctx context.Context, productID int64, colours []string, colourImages map[string]int) error {
	product, err := b.platform.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.Image == nil {
		b.log.Info(ctx, "product has no primary image, skipping image binding")
		return nil
	}

	variants, err := b.fetchVariantsWithRetry(ctx, productID)
	if err != nil {
		return err
	}

	mainImageID := product.Image.ID
	allIDs := make([]int64, 0, len(variants))
	for _, v := range variants {
		if v.ID != 0 {
			allIDs = append(allIDs, v.ID)
		}
	}
	if mainImageID == 0 || len(allIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeConsistency, "variants not visible yet, image binding gave up")
	}

	if len(colours) == 0 {
		return b.platform.AssignImageToVariants(ctx, productID, mainImageID, allIDs)
	}

	byColour := make(map[string][]int64)
	colourSet := make(map[string]struct{}, len(colours))
	for _, c := range colours {
		colourSet[c] = struct{}{}
	}
	for _, v := range variants {
		if _, ok := colourSet[v.Option1]; ok {
			byColour[v.Option1] = append(byColour[v.Option1], v.ID)
		}
	}

	assigned := make(map[int64]struct{})
	for _, colour := range colours {
		variantIDs := byColour[colour]
		if len(variantIDs) == 0 {
			b.log.Warn(b.log.WithField(ctx, "colour", colour), "no variants found for colour")
			continue
		}
		image := pickColourImage(product.Images, colour, colourImages)
		if image == nil {
			continue
		}
		if err := b.platform.AssignImageToVariants(ctx, productID, image.ID, variantIDs); err != nil {
			b.log.Warn(b.log.WithField(ctx, "colour", colour), "colour image assignment failed")
			continue
		}
		for _, id := range variantIDs {
			assigned[id] = struct{}{}
		}
	}

	var unassigned []int64
	for _, id := range allIDs {
		if _, ok := assigned[id]; !ok {
			unassigned = append(unassigned, id)
		}
	}
	if len(unassigned) > 0 {
		return b.platform.AssignImageToVariants(ctx, productID, mainImageID, unassigned)
	}
	return nil
}

// fetchVariantsWithRetry waits out the window between variant creation
// and the variants becoming visible to reads.
func (b *Binder) fetchVariantsWithRetry(ctx context.Context, productID int64) ([]shopify.Variant, error) {
	retries := b.cfg.ConsistencyRetries
	if retries <= 0 {
		retries = 3
	}
	b.sleep(b.cfg.ConsistencyDelay)

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		variants, err := b.platform.ListProductVariants(ctx, productID)
		if err == nil && len(variants) > 0 {
			return variants, nil
		}
		lastErr = err
		if attempt < retries {
			b.sleep(b.cfg.ConsistencyDelay)
		}
	}
	if lastErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConsistency, lastErr, "variants never became visible")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConsistency, "variants never became visible")
}

// pickColourImage resolves a colour's image: explicit index first, then
// a case-insensitive match on the image URL or alt text.
func pickColourImage(images []shopify.Image, colour string, colourImages map[string]int) *shopify.Image {
	if idx, ok := colourImages[colour]; ok && idx >= 0 && idx < len(images) {
		return &images[idx]
	}
	needle := strings.ToLower(colour)
	for i := range images {
		if strings.Contains(strings.ToLower(images[i].Src), needle) ||
			strings.Contains(strings.ToLower(images[i].Alt), needle) {
			return &images[i]
		}
	}
	return nil
}
