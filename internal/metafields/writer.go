package metafields

import (
	"context"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Namespace holds every metafield this tool reads or writes.
const Namespace = "custom"

// Platform is the slice of the platform client the writer needs.
type Platform interface {
	ListProductMetafields(ctx context.Context, productID int64) ([]shopify.Metafield, error)
	CreateMetafield(ctx context.Context, productID int64, namespace, key, value, valueType string) (*shopify.Metafield, error)
	UpdateMetafield(ctx context.Context, metafieldID int64, value, valueType string) error
	DeleteMetafield(ctx context.Context, metafieldID int64) error
}

// Ref is an existing metafield's identity and raw value, keyed by key.
type Ref struct {
	ID    int64
	Value string
}

// FetchByKeys returns the product's custom-namespace metafields for the
// given keys. Absent keys are simply missing from the map.
func FetchByKeys(ctx context.Context, platform Platform, productID int64, keys ...string) (map[string]Ref, error) {
	all, err := platform.ListProductMetafields(ctx, productID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	refs := make(map[string]Ref)
	for _, mf := range all {
		if mf.Namespace != Namespace {
			continue
		}
		if _, ok := wanted[mf.Key]; !ok {
			continue
		}
		refs[mf.Key] = Ref{ID: mf.ID, Value: mf.Value}
	}
	return refs, nil
}

// Writer persists structured values into product metafields, updating
// in place when the key already exists. Writing the same value twice
// converges to the same platform state.
type Writer struct {
	platform Platform
	log      *logger.Logger
}

func NewWriter(platform Platform, log *logger.Logger) (*Writer, error) {
	if platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Writer{platform: platform, log: log}, nil
}

// SetOrUpdate writes value under the custom namespace: update by the
// known metafield ID when existing has one, create otherwise. The value
// is serialized through EncodeValue.
func (w *Writer) SetOrUpdate(ctx context.Context, existing map[string]Ref, productID int64, key string, value any) error {
	encoded, err := EncodeValue(value)
	if err != nil {
		return err
	}

	if ref, ok := existing[key]; ok && ref.ID != 0 {
		if err := w.platform.UpdateMetafield(ctx, ref.ID, encoded, ""); err != nil {
			return err
		}
		w.log.Info(w.log.WithFields(ctx, map[string]any{"key": key, "metafield_id": ref.ID}), "metafield updated")
		return nil
	}

	created, err := w.platform.CreateMetafield(ctx, productID, Namespace, key, encoded, shopify.MetafieldTypeText)
	if err != nil {
		return err
	}
	existing[key] = Ref{ID: created.ID, Value: encoded}
	w.log.Info(w.log.WithFields(ctx, map[string]any{"key": key, "metafield_id": created.ID}), "metafield created")
	return nil
}
