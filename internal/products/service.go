package products

import (
	"context"
	"strings"

	"github.com/harlowprint/backoffice-backend/internal/metafields"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Platform is the slice of the platform client the product service needs.
type Platform interface {
	ListProducts(ctx context.Context) ([]shopify.Product, error)
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	CreateProduct(ctx context.Context, product shopify.Product) (*shopify.Product, error)
	ListProductVariants(ctx context.Context, productID int64) ([]shopify.Variant, error)
	UpdateVariant(ctx context.Context, variant shopify.Variant) error
	metafields.Platform
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Platform Platform
	Logger   *logger.Logger
}

// Service exposes product listing, detail and creation.
type Service interface {
	List(ctx context.Context, filter string) ([]Summary, error)
	Get(ctx context.Context, productID int64) (*Detail, error)
	GetWithPrices(ctx context.Context, productID int64) (*Detail, error)
	Create(ctx context.Context, input CreateInput) (*shopify.Product, error)
}

type service struct {
	platform Platform
	log      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{platform: params.Platform, log: params.Logger}, nil
}

// List returns product summaries, optionally narrowed by the text
// filter (exact id/title/SKU or substring of title/SKU).
func (s *service) List(ctx context.Context, filter string) ([]Summary, error) {
	all, err := s.platform.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	selected := Filter(all, nil, filter)
	summaries := make([]Summary, 0, len(selected))
	for _, p := range selected {
		summary := Summary{ID: p.ID, Title: p.Title}
		if len(p.Variants) > 0 {
			summary.SKU = p.Variants[0].SKU
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns the product with all of its metafields.
func (s *service) Get(ctx context.Context, productID int64) (*Detail, error) {
	return s.detail(ctx, productID, false)
}

// GetWithPrices returns the product with variants, images and every
// metafield, including the pricing band keys the price manager edits.
func (s *service) GetWithPrices(ctx context.Context, productID int64) (*Detail, error) {
	return s.detail(ctx, productID, true)
}

func (s *service) detail(ctx context.Context, productID int64, includeMedia bool) (*Detail, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.platform.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	mfs, err := s.platform.ListProductMetafields(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !includeMedia {
		product.Images = nil
	}
	return &Detail{Product: *product, Metafields: mfs}, nil
}

// Create creates the product, then its metafields, then pushes the VAT
// choice onto every variant's taxable flag. Metafield or taxable
// failures after the product exists are logged, not rolled back.
func (s *service) Create(ctx context.Context, input CreateInput) (*shopify.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	status := input.Status
	if status == "" {
		status = "draft"
	}

	created, err := s.platform.CreateProduct(ctx, shopify.Product{
		Title:    input.Title,
		BodyHTML: input.BodyHTML,
		Vendor:   input.Vendor,
		Tags:     strings.Join(input.Tags, ", "),
		Status:   status,
	})
	if err != nil {
		return nil, err
	}
	ctx = s.log.WithProductID(ctx, created.ID)

	for _, mf := range input.Metafields {
		namespace := mf.Namespace
		if namespace == "" {
			namespace = metafields.Namespace
		}
		valueType := mf.Type
		if valueType == "" {
			valueType = shopify.MetafieldTypeText
		}
		if _, err := s.platform.CreateMetafield(ctx, created.ID, namespace, mf.Key, mf.Value, valueType); err != nil {
			s.log.Warn(s.log.WithField(ctx, "key", mf.Key), "metafield creation failed on new product")
		}
	}

	if err := s.updateTaxable(ctx, created.ID, input.ChargeVAT); err != nil {
		s.log.Warn(ctx, "taxable update failed on new product")
	}
	return created, nil
}

func (s *service) updateTaxable(ctx context.Context, productID int64, taxable bool) error {
	variants, err := s.platform.ListProductVariants(ctx, productID)
	if err != nil {
		return err
	}
	for _, v := range variants {
		v.Taxable = taxable
		if err := s.platform.UpdateVariant(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
