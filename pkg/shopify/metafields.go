package shopify

import (
	"context"
	"fmt"
	"net/http"
)

// ListProductMetafields returns all metafields of a product, paginated.
func (c *Client) ListProductMetafields(ctx context.Context, productID int64) ([]Metafield, error) {
	url := fmt.Sprintf("%s/products/%d/metafields.json?limit=250", c.baseURL, productID)
	var collected []Metafield
	for url != "" {
		var page struct {
			Metafields []Metafield `json:"metafields"`
		}
		header, err := c.doREST(ctx, http.MethodGet, url, nil, &page)
		if err != nil {
			return nil, err
		}
		collected = append(collected, page.Metafields...)
		url = nextPageURL(header)
	}
	return collected, nil
}

// CreateMetafield attaches a new metafield to a product.
func (c *Client) CreateMetafield(ctx context.Context, productID int64, namespace, key, value, valueType string) (*Metafield, error) {
	payload := map[string]any{
		"metafield": map[string]any{
			"namespace":      namespace,
			"key":            key,
			"value":          value,
			"type":           valueType,
			"owner_id":       productID,
			"owner_resource": "product",
		},
	}
	var out struct {
		Metafield Metafield `json:"metafield"`
	}
	if _, err := c.doREST(ctx, http.MethodPost, c.baseURL+"/metafields.json", payload, &out); err != nil {
		return nil, err
	}
	return &out.Metafield, nil
}

// UpdateMetafield replaces the value of an existing metafield by its ID.
func (c *Client) UpdateMetafield(ctx context.Context, metafieldID int64, value string, valueType string) error {
	field := map[string]any{
		"id":    metafieldID,
		"value": value,
	}
	if valueType != "" {
		field["type"] = valueType
	}
	url := fmt.Sprintf("%s/metafields/%d.json", c.baseURL, metafieldID)
	_, err := c.doREST(ctx, http.MethodPut, url, map[string]any{"metafield": field}, nil)
	return err
}

// DeleteMetafield removes a metafield by its ID.
func (c *Client) DeleteMetafield(ctx context.Context, metafieldID int64) error {
	url := fmt.Sprintf("%s/metafields/%d.json", c.baseURL, metafieldID)
	_, err := c.doREST(ctx, http.MethodDelete, url, nil, nil)
	return err
}
