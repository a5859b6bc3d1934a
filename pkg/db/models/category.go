package models

import "time"

// Category kinds.
const (
	CategoryKindCategory    = "category"
	CategoryKindSubcategory = "subcategory"
)

// Category is one entry of the merchant's category or subcategory
// catalogue, offered as choice lists in the product editor and mirrored
// to platform collections on sync.
type Category struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:categories_kind_name_key" json:"name"`
	Kind      string    `gorm:"column:kind;not null;uniqueIndex:categories_kind_name_key" json:"kind"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
