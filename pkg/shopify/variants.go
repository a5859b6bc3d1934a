package shopify

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// ErrLastVariant marks a bulk delete refused because a product must retain
// at least one variant. Callers fall through to the replace path.
var ErrLastVariant = pkgerrors.New(pkgerrors.CodeStateError, "cannot delete the last variant of a product")

const variantIDsQuery = `
query getProductVariants($id: ID!) {
    product(id: $id) {
        variants(first: 250) {
            edges {
                node {
                    id
                }
            }
        }
    }
}
`

const variantsBulkDeleteMutation = `
mutation productVariantsBulkDelete($productId: ID!, $variantsIds: [ID!]!) {
    productVariantsBulkDelete(productId: $productId, variantsIds: $variantsIds) {
        product {
            id
        }
        userErrors {
            field
            message
        }
    }
}
`

const variantsBulkCreateMutation = `
mutation productVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
    productVariantsBulkCreate(productId: $productId, variants: $variants) {
        productVariants {
            id
            price
            selectedOptions {
                name
                value
            }
        }
        userErrors {
            field
            message
        }
    }
}
`

// GetVariantGIDs returns the global IDs of a product's variants.
func (c *Client) GetVariantGIDs(ctx context.Context, productID int64) ([]string, error) {
	var out struct {
		Product struct {
			Variants struct {
				Edges []struct {
					Node struct {
						ID string `json:"id"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	}
	err := c.Execute(ctx, variantIDsQuery, map[string]any{"id": ProductGID(productID)}, &out)
	if err != nil {
		return nil, err
	}
	gids := make([]string, 0, len(out.Product.Variants.Edges))
	for _, edge := range out.Product.Variants.Edges {
		gids = append(gids, edge.Node.ID)
	}
	return gids, nil
}

// BulkDeleteVariants removes the given variants in one mutation.
// Returns ErrLastVariant when the platform refuses to empty the product.
func (c *Client) BulkDeleteVariants(ctx context.Context, productID int64, variantGIDs []string) error {
	if len(variantGIDs) == 0 {
		return nil
	}
	var out struct {
		ProductVariantsBulkDelete struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantsBulkDelete"`
	}
	err := c.Execute(ctx, variantsBulkDeleteMutation, map[string]any{
		"productId":   ProductGID(productID),
		"variantsIds": variantGIDs,
	}, &out)
	if err != nil {
		return err
	}
	if errs := out.ProductVariantsBulkDelete.UserErrors; len(errs) > 0 {
		for _, ue := range errs {
			if strings.Contains(strings.ToLower(ue.Message), "last variant") {
				return ErrLastVariant
			}
		}
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant delete rejected: %s", joinUserErrors(errs)))
	}
	return nil
}

// BulkCreateVariants creates one batch of variants via GraphQL. Option
// values must match the product's option definitions exactly.
func (c *Client) BulkCreateVariants(ctx context.Context, productID int64, variants []map[string]any) ([]CreatedVariant, error) {
	var out struct {
		ProductVariantsBulkCreate struct {
			ProductVariants []struct {
				ID              string `json:"id"`
				Price           string `json:"price"`
				SelectedOptions []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"selectedOptions"`
			} `json:"productVariants"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantsBulkCreate"`
	}
	err := c.Execute(ctx, variantsBulkCreateMutation, map[string]any{
		"productId": ProductGID(productID),
		"variants":  variants,
	}, &out)
	if err != nil {
		return nil, err
	}
	if errs := out.ProductVariantsBulkCreate.UserErrors; len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant create rejected: %s", joinUserErrors(errs)))
	}

	created := make([]CreatedVariant, 0, len(out.ProductVariantsBulkCreate.ProductVariants))
	for _, pv := range out.ProductVariantsBulkCreate.ProductVariants {
		cv := CreatedVariant{
			GID:             pv.ID,
			Price:           pv.Price,
			SelectedOptions: make(map[string]string, len(pv.SelectedOptions)),
		}
		for _, so := range pv.SelectedOptions {
			cv.SelectedOptions[so.Name] = so.Value
		}
		created = append(created, cv)
	}
	return created, nil
}
