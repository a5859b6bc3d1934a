package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresShopifyCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_STORE_DOMAIN", "")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPIFY_STORE_DOMAIN", "example.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "2025-07", cfg.Shopify.APIVersion)
	assert.Equal(t, 25, cfg.Pricing.VariantBatchSize)
	assert.Equal(t, 3, cfg.Pricing.ConsistencyRetries)
	assert.True(t, cfg.App.IsDev())
}

func TestShopifyDomainNormalization(t *testing.T) {
	cfg := ShopifyConfig{StoreDomain: "https://example.myshopify.com/"}
	assert.Equal(t, "example.myshopify.com", cfg.Domain())
}
