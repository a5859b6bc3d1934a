package shopify

import (
	"context"
	"fmt"
	"net/http"
)

// AssignImageToVariants points a product image at the given variant IDs.
func (c *Client) AssignImageToVariants(ctx context.Context, productID, imageID int64, variantIDs []int64) error {
	payload := map[string]any{
		"image": map[string]any{
			"id":          imageID,
			"variant_ids": variantIDs,
		},
	}
	url := fmt.Sprintf("%s/products/%d/images/%d.json", c.baseURL, productID, imageID)
	_, err := c.doREST(ctx, http.MethodPut, url, payload, nil)
	return err
}
