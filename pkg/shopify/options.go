package shopify

import "context"

const productOptionsQuery = `
query getProduct($id: ID!) {
    product(id: $id) {
        id
        options {
            id
            name
            values
        }
    }
}
`

// GetProductOptionNames returns the product's option names in order.
func (c *Client) GetProductOptionNames(ctx context.Context, productID int64) ([]string, error) {
	var out struct {
		Product struct {
			Options []struct {
				Name string `json:"name"`
			} `json:"options"`
		} `json:"product"`
	}
	if err := c.Execute(ctx, productOptionsQuery, map[string]any{"id": ProductGID(productID)}, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Product.Options))
	for _, opt := range out.Product.Options {
		names = append(names, opt.Name)
	}
	return names, nil
}
