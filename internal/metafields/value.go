package metafields

import (
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// ValueKind selects which representation a Value carries.
type ValueKind string

const (
	KindText          ValueKind = "text"
	KindListText      ValueKind = "list_text"
	KindFileReference ValueKind = "file_reference"
)

// Value is a tagged metafield value. Exactly one representation is
// meaningful for a given Kind.
type Value struct {
	Kind    ValueKind `json:"kind" validate:"required,oneof=text list_text file_reference"`
	Text    string    `json:"text,omitempty"`
	List    []string  `json:"list,omitempty"`
	FileGID string    `json:"file_gid,omitempty"`
}

// Encode renders the value and its platform type string.
func (v Value) Encode() (value string, platformType string, err error) {
	switch v.Kind {
	case KindText:
		return v.Text, shopify.MetafieldTypeText, nil
	case KindListText:
		raw, err := marshalNoEscape(v.List)
		if err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding list metafield")
		}
		return string(raw), shopify.MetafieldTypeListText, nil
	case KindFileReference:
		return v.FileGID, shopify.MetafieldTypeFileReference, nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "unknown metafield value kind")
	}
}
