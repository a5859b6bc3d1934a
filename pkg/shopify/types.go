package shopify

// Variant is the REST representation of a product variant.
type Variant struct {
	ID                  int64   `json:"id,omitempty"`
	ProductID           int64   `json:"product_id,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	Price               string  `json:"price,omitempty"`
	Option1             string  `json:"option1,omitempty"`
	Option2             string  `json:"option2,omitempty"`
	Option3             string  `json:"option3,omitempty"`
	Weight              int     `json:"weight"`
	WeightUnit          string  `json:"weight_unit,omitempty"`
	Taxable             bool    `json:"taxable"`
	InventoryManagement *string `json:"inventory_management"`
	InventoryPolicy     string  `json:"inventory_policy,omitempty"`
	RequiresShipping    bool    `json:"requires_shipping"`
}

// ProductOption is the REST representation of a product option definition.
type ProductOption struct {
	ID     int64    `json:"id,omitempty"`
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

// Image is the REST representation of a product image.
type Image struct {
	ID         int64   `json:"id,omitempty"`
	Src        string  `json:"src,omitempty"`
	Alt        string  `json:"alt,omitempty"`
	Position   int     `json:"position,omitempty"`
	VariantIDs []int64 `json:"variant_ids,omitempty"`
}

// Product is the REST representation of a product.
type Product struct {
	ID       int64           `json:"id,omitempty"`
	Title    string          `json:"title,omitempty"`
	BodyHTML string          `json:"body_html,omitempty"`
	Vendor   string          `json:"vendor,omitempty"`
	Tags     string          `json:"tags,omitempty"`
	Status   string          `json:"status,omitempty"`
	Options  []ProductOption `json:"options,omitempty"`
	Variants []Variant       `json:"variants,omitempty"`
	Image    *Image          `json:"image,omitempty"`
	Images   []Image         `json:"images,omitempty"`
}

// Metafield is the REST representation of a namespaced key/value attribute.
type Metafield struct {
	ID            int64  `json:"id,omitempty"`
	Namespace     string `json:"namespace,omitempty"`
	Key           string `json:"key,omitempty"`
	Value         string `json:"value,omitempty"`
	Type          string `json:"type,omitempty"`
	OwnerID       int64  `json:"owner_id,omitempty"`
	OwnerResource string `json:"owner_resource,omitempty"`
}

// Metafield value types used by this tool.
const (
	MetafieldTypeText          = "single_line_text_field"
	MetafieldTypeListText      = "list.single_line_text_field"
	MetafieldTypeFileReference = "file_reference"
)

// CollectionRule is one tag rule on a smart collection.
type CollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

// SmartCollection is the REST representation of a rule-based collection.
type SmartCollection struct {
	ID       int64            `json:"id,omitempty"`
	Title    string           `json:"title,omitempty"`
	Rules    []CollectionRule `json:"rules,omitempty"`
	Disjunct bool             `json:"disjunctive"`
}

// CreatedVariant is the subset of a variant returned by
// productVariantsBulkCreate, option values flattened for matching.
type CreatedVariant struct {
	GID             string
	Price           string
	SelectedOptions map[string]string
}

// File is a file resource returned by the GraphQL files query.
type File struct {
	GID      string `json:"id"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	URL      string `json:"url"`
}

// StagedUploadTarget is the destination returned by stagedUploadsCreate.
type StagedUploadTarget struct {
	URL         string
	ResourceURL string
	Parameters  map[string]string
}
