package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(config.ShopifyConfig{
		StoreDomain:      "example.myshopify.com",
		APIVersion:       "2025-07",
		AccessToken:      "shpat_test",
		Timeout:          5 * time.Second,
		RateLimitBackoff: time.Millisecond,
		MaxRetries:       3,
	}, logg)
	require.NoError(t, err)

	client.baseURL = server.URL
	client.graphqlURL = server.URL + "/graphql.json"
	client.httpClient = server.Client()
	client.sleep = func(time.Duration) {}
	return client
}

func TestDoRESTRetriesOn429WithSamePayload(t *testing.T) {
	var bodies []string
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	var out struct {
		OK bool `json:"ok"`
	}
	_, err := client.doREST(context.Background(), http.MethodPut, server.URL+"/variants/1.json", map[string]any{"a": 1}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, 3, calls)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}

func TestDoRESTExhaustsRateLimitRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.doREST(context.Background(), http.MethodGet, server.URL+"/products.json", nil, nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}

func TestDoRESTMapsClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.doREST(context.Background(), http.MethodGet, server.URL+"/products/1.json", nil, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListProductsFollowsLinkPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", `<`+server.URL+`/products.json?page_info=abc>; rel="next"`)
			json.NewEncoder(w).Encode(map[string]any{"products": []map[string]any{{"id": 1, "title": "First"}}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"products": []map[string]any{{"id": 2, "title": "Second"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(2), products[1].ID)
}

func TestBulkDeleteVariantsLastVariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"productVariantsBulkDelete": map[string]any{
					"userErrors": []map[string]any{
						{"field": nil, "message": "Cannot delete the last variant"},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.BulkDeleteVariants(context.Background(), 7, []string{VariantGID(1)})
	assert.ErrorIs(t, err, ErrLastVariant)
}

func TestBulkCreateVariantsFlattensSelectedOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"productVariantsBulkCreate": map[string]any{
					"productVariants": []map[string]any{
						{
							"id":    "gid://shopify/ProductVariant/99",
							"price": "5.00",
							"selectedOptions": []map[string]any{
								{"name": "Quantity", "value": "1-10"},
								{"name": "Customer Type", "value": "Trade"},
							},
						},
					},
					"userErrors": []any{},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	created, err := client.BulkCreateVariants(context.Background(), 7, []map[string]any{{"price": "5.00"}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "1-10", created[0].SelectedOptions["Quantity"])
	assert.Equal(t, "Trade", created[0].SelectedOptions["Customer Type"])
	assert.Equal(t, int64(99), NumericID(created[0].GID))
}

func TestExecuteSurfacesGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "Throttled"}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Execute(context.Background(), "query { shop { id } }", nil, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}

func TestNextPageURL(t *testing.T) {
	header := http.Header{}
	header.Set("Link", `<https://x/prev>; rel="previous", <https://x/next?page_info=n>; rel="next"`)
	assert.Equal(t, "https://x/next?page_info=n", nextPageURL(header))

	header.Set("Link", `<https://x/prev>; rel="previous"`)
	assert.Equal(t, "", nextPageURL(header))
}

func TestGIDHelpers(t *testing.T) {
	assert.Equal(t, "gid://shopify/Product/12", ProductGID(12))
	assert.Equal(t, int64(34), NumericID("gid://shopify/ProductVariant/34"))
	assert.Equal(t, int64(0), NumericID("not-a-gid"))
}
