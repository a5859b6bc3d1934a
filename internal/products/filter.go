package products

import (
	"strconv"
	"strings"

	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Filter narrows a product list. An explicit ID list wins over the text
// filter. The text filter matches exactly on ID, title or first-variant
// SKU, or as a substring of title or SKU.
func Filter(products []shopify.Product, ids []int64, filter string) []shopify.Product {
	if len(ids) > 0 {
		wanted := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
		var out []shopify.Product
		for _, p := range products {
			if _, ok := wanted[p.ID]; ok {
				out = append(out, p)
			}
		}
		return out
	}

	flt := strings.ToLower(strings.TrimSpace(filter))
	if flt == "" {
		return products
	}

	var out []shopify.Product
	for _, p := range products {
		if p.ID == 0 {
			continue
		}
		pid := strconv.FormatInt(p.ID, 10)
		title := strings.ToLower(p.Title)
		sku := ""
		if len(p.Variants) > 0 {
			sku = strings.ToLower(p.Variants[0].SKU)
		}
		if flt == pid || flt == title || (sku != "" && flt == sku) ||
			strings.Contains(title, flt) || (sku != "" && strings.Contains(sku, flt)) {
			out = append(out, p)
		}
	}
	return out
}
