package products

import "github.com/harlowprint/backoffice-backend/pkg/shopify"

// Summary is the lightweight product row used by list/autocomplete.
type Summary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku,omitempty"`
}

// Detail is a product with its metafields attached.
type Detail struct {
	Product    shopify.Product     `json:"product"`
	Metafields []shopify.Metafield `json:"metafields"`
}

// MetafieldInput is one metafield to create alongside a new product.
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key" validate:"required"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// CreateInput is the payload for creating a product with its
// metafields in one pass.
type CreateInput struct {
	Title      string           `json:"title" validate:"required"`
	BodyHTML   string           `json:"body_html"`
	Vendor     string           `json:"vendor"`
	Tags       []string         `json:"tags"`
	Status     string           `json:"status" validate:"omitempty,oneof=active draft archived"`
	ChargeVAT  bool             `json:"charge_vat"`
	Metafields []MetafieldInput `json:"metafields" validate:"dive"`
}
