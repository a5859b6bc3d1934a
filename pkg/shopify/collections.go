package shopify

import (
	"context"
	"fmt"
	"net/http"
)

// ListSmartCollections returns all rule-based collections, paginated.
func (c *Client) ListSmartCollections(ctx context.Context) ([]SmartCollection, error) {
	url := c.baseURL + "/smart_collections.json?limit=250"
	var collected []SmartCollection
	for url != "" {
		var page struct {
			SmartCollections []SmartCollection `json:"smart_collections"`
		}
		header, err := c.doREST(ctx, http.MethodGet, url, nil, &page)
		if err != nil {
			return nil, err
		}
		collected = append(collected, page.SmartCollections...)
		url = nextPageURL(header)
	}
	return collected, nil
}

// CreateSmartCollection creates a rule-based collection.
func (c *Client) CreateSmartCollection(ctx context.Context, collection SmartCollection) (*SmartCollection, error) {
	payload := map[string]any{"smart_collection": collection}
	var out struct {
		SmartCollection SmartCollection `json:"smart_collection"`
	}
	if _, err := c.doREST(ctx, http.MethodPost, c.baseURL+"/smart_collections.json", payload, &out); err != nil {
		return nil, err
	}
	return &out.SmartCollection, nil
}

// UpdateSmartCollection replaces the rules of an existing collection.
func (c *Client) UpdateSmartCollection(ctx context.Context, collection SmartCollection) error {
	payload := map[string]any{"smart_collection": collection}
	url := fmt.Sprintf("%s/smart_collections/%d.json", c.baseURL, collection.ID)
	_, err := c.doREST(ctx, http.MethodPut, url, payload, nil)
	return err
}
