package metafields

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

type fakeMetafieldPlatform struct {
	fields    []shopify.Metafield
	nextID    int64
	deleted   []int64
	listCalls int
}

func (f *fakeMetafieldPlatform) ListProductMetafields(context.Context, int64) ([]shopify.Metafield, error) {
	f.listCalls++
	return f.fields, nil
}

func (f *fakeMetafieldPlatform) CreateMetafield(_ context.Context, productID int64, namespace, key, value, valueType string) (*shopify.Metafield, error) {
	f.nextID++
	mf := shopify.Metafield{ID: f.nextID, Namespace: namespace, Key: key, Value: value, Type: valueType, OwnerID: productID}
	f.fields = append(f.fields, mf)
	return &mf, nil
}

func (f *fakeMetafieldPlatform) UpdateMetafield(_ context.Context, metafieldID int64, value, valueType string) error {
	for i := range f.fields {
		if f.fields[i].ID == metafieldID {
			f.fields[i].Value = value
			if valueType != "" {
				f.fields[i].Type = valueType
			}
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "metafield not found")
}

func (f *fakeMetafieldPlatform) DeleteMetafield(_ context.Context, metafieldID int64) error {
	f.deleted = append(f.deleted, metafieldID)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestWriterCreatesThenUpdates(t *testing.T) {
	fake := &fakeMetafieldPlatform{}
	writer, err := NewWriter(fake, testLogger())
	require.NoError(t, err)

	existing := map[string]Ref{}
	value := []map[string]int{{"a": 1}}

	require.NoError(t, writer.SetOrUpdate(context.Background(), existing, 7, "pricejsontid", value))
	require.Len(t, fake.fields, 1)
	assert.Equal(t, Namespace, fake.fields[0].Namespace)
	assert.Equal(t, `[{"a": 1}]`, fake.fields[0].Value)

	// Second write with the same key goes through the update path.
	require.NoError(t, writer.SetOrUpdate(context.Background(), existing, 7, "pricejsontid", value))
	assert.Len(t, fake.fields, 1)
	assert.Equal(t, `[{"a": 1}]`, fake.fields[0].Value)
}

func TestServiceSetCreatesAndUpdates(t *testing.T) {
	fake := &fakeMetafieldPlatform{}
	svc, err := NewService(ServiceParams{Platform: fake, Logger: testLogger()})
	require.NoError(t, err)

	created, err := svc.Set(context.Background(), 7, "custom", "sku", Value{Kind: KindText, Text: "BC100"})
	require.NoError(t, err)
	assert.Equal(t, "BC100", created.Value)
	assert.Equal(t, shopify.MetafieldTypeText, created.Type)

	updated, err := svc.Set(context.Background(), 7, "custom", "sku", Value{Kind: KindText, Text: "BC200"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "BC200", fake.fields[0].Value)
}

func TestServiceSetListValue(t *testing.T) {
	fake := &fakeMetafieldPlatform{}
	svc, err := NewService(ServiceParams{Platform: fake, Logger: testLogger()})
	require.NoError(t, err)

	created, err := svc.Set(context.Background(), 7, "custom", "product_colours",
		Value{Kind: KindListText, List: []string{"Red:r", "Blue", "B&W"}})
	require.NoError(t, err)
	assert.Equal(t, shopify.MetafieldTypeListText, created.Type)
	assert.Equal(t, `["Red:r","Blue","B&W"]`, created.Value)
}

type fakeCache struct {
	store map[string]string
}

func (f *fakeCache) CacheKey(parts ...string) string {
	return strings.Join(append([]string{"bo", "cache"}, parts...), ":")
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	value, ok := f.store[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.store[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.store, key)
	}
	return nil
}

func TestServiceListCachesAndInvalidatesOnWrite(t *testing.T) {
	fake := &fakeMetafieldPlatform{fields: []shopify.Metafield{
		{ID: 1, Namespace: "custom", Key: "sku", Value: "BC100"},
	}}
	cache := &fakeCache{store: map[string]string{}}
	svc, err := NewService(ServiceParams{Platform: fake, Cache: cache, Logger: testLogger()})
	require.NoError(t, err)

	first, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, fake.listCalls)

	// Second listing is served from the cache.
	second, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.listCalls)

	// A write drops the cached listing; find goes to the platform,
	// and the next List re-fetches.
	_, err = svc.Set(context.Background(), 7, "custom", "sku", Value{Kind: KindText, Text: "BC200"})
	require.NoError(t, err)
	refreshed, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, fake.listCalls)
	assert.Equal(t, "BC200", refreshed[0].Value)
}

func TestServiceDelete(t *testing.T) {
	fake := &fakeMetafieldPlatform{
		fields: []shopify.Metafield{{ID: 42, Namespace: "custom", Key: "sku"}},
	}
	svc, err := NewService(ServiceParams{Platform: fake, Logger: testLogger()})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 7, "custom", "sku"))
	assert.Equal(t, []int64{42}, fake.deleted)

	err = svc.Delete(context.Background(), 7, "custom", "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestFetchByKeysFiltersNamespaceAndKeys(t *testing.T) {
	fake := &fakeMetafieldPlatform{fields: []shopify.Metafield{
		{ID: 1, Namespace: Namespace, Key: "sku", Value: "BC100"},
		{ID: 2, Namespace: "other", Key: "sku", Value: "nope"},
		{ID: 3, Namespace: Namespace, Key: "unrelated", Value: "nope"},
	}}
	refs, err := FetchByKeys(context.Background(), fake, 7, "sku")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(1), refs["sku"].ID)
	assert.Equal(t, "BC100", refs["sku"].Value)
}
