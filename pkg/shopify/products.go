package shopify

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// ListProducts returns every product in the store, following Link pagination.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	url := c.baseURL + "/products.json?limit=250"
	var collected []Product
	for url != "" {
		var page struct {
			Products []Product `json:"products"`
		}
		header, err := c.doREST(ctx, http.MethodGet, url, nil, &page)
		if err != nil {
			return nil, err
		}
		collected = append(collected, page.Products...)
		url = nextPageURL(header)
	}
	return collected, nil
}

// GetProduct fetches one product by numeric ID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)
	if _, err := c.doREST(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	if out.Product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", productID))
	}
	return &out.Product, nil
}

// ListProductVariants returns every variant of one product, paginated.
func (c *Client) ListProductVariants(ctx context.Context, productID int64) ([]Variant, error) {
	url := fmt.Sprintf("%s/products/%d/variants.json?limit=250", c.baseURL, productID)
	var collected []Variant
	for url != "" {
		var page struct {
			Variants []Variant `json:"variants"`
		}
		header, err := c.doREST(ctx, http.MethodGet, url, nil, &page)
		if err != nil {
			return nil, err
		}
		collected = append(collected, page.Variants...)
		url = nextPageURL(header)
	}
	return collected, nil
}

// ReplaceProductVariants PUTs the full option + variant set onto the product
// and returns the variants the platform actually created. From the caller's
// perspective this replaces the variant list atomically.
func (c *Client) ReplaceProductVariants(ctx context.Context, productID int64, options []ProductOption, variants []Variant) ([]Variant, error) {
	payload := map[string]any{
		"product": map[string]any{
			"id":       productID,
			"options":  options,
			"variants": variants,
		},
	}
	var out struct {
		Product Product `json:"product"`
	}
	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)
	if _, err := c.doREST(ctx, http.MethodPut, url, payload, &out); err != nil {
		return nil, err
	}
	return out.Product.Variants, nil
}

// CreateProduct creates a product and returns the stored representation.
func (c *Client) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	payload := map[string]any{"product": product}
	var out struct {
		Product Product `json:"product"`
	}
	if _, err := c.doREST(ctx, http.MethodPost, c.baseURL+"/products.json", payload, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// UpdateVariant PUTs a single variant, used to backfill fields that the bulk
// create mutation does not accept (sku, weight, shipping flags).
func (c *Client) UpdateVariant(ctx context.Context, variant Variant) error {
	if variant.ID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	payload := map[string]any{"variant": variant}
	url := fmt.Sprintf("%s/variants/%d.json", c.baseURL, variant.ID)
	_, err := c.doREST(ctx, http.MethodPut, url, payload, nil)
	return err
}
