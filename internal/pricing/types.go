package pricing

// CustomerType is the pricing-tier dimension orthogonal to quantity.
type CustomerType string

const (
	CustomerTrade CustomerType = "Trade"
	CustomerEnd   CustomerType = "End Customer"
)

// Option names used on the platform product.
const (
	OptionColour       = "Colour"
	OptionQuantity     = "Quantity"
	OptionCustomerType = "Customer Type"
)

// CandidateVariant is a synthesized variant row. It has no platform
// identity; the platform is the sole source of variant IDs.
type CandidateVariant struct {
	Price        string
	SKU          string
	Weight       int
	Option1      string
	Option2      string
	Option3      string
	Label        string
	CustomerType CustomerType
	Colour       string
}

// ConfirmedVariant is a variant the platform acknowledged, carrying the
// platform-assigned ID and the option tuple used for match-back.
type ConfirmedVariant struct {
	ID      int64
	Option1 string
	Option2 string
	Option3 string
}

// EnrichedBand is a price band augmented with its confirmed variant ID,
// ready to persist back into the pricing metafields.
type EnrichedBand struct {
	Min       int    `json:"min"`
	Max       int    `json:"max"`
	Price     string `json:"price"`
	VariantID int64  `json:"id"`
}

// ProductRunResult reports one product's pricing run.
type ProductRunResult struct {
	ProductID    int64  `json:"product_id"`
	Title        string `json:"title"`
	VariantCount int    `json:"variant_count"`
	Skipped      bool   `json:"skipped"`
	Reason       string `json:"reason,omitempty"`
}

// BatchRunSummary reports a multi-product run.
type BatchRunSummary struct {
	RunID      string `json:"run_id"`
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
}

// Metafield keys read and written by the pricing pipeline.
const (
	KeyTradeBands    = "pricejsontr"
	KeyEndBands      = "pricejsoner"
	KeyTradeEnriched = "pricejsontid"
	KeyEndEnriched   = "pricejsoneid"
	KeyUnitWeight    = "unit_weight"
	KeySKU           = "sku"
	KeyColours       = "product_colours"
)
