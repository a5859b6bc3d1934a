package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

func TestParseBands(t *testing.T) {
	bands, err := ParseBands(`[{"min":1,"max":10,"price":"5.00"},{"min":11,"max":20,"price":7.5}]`)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "1-10", bands[0].Label())
	assert.Equal(t, "11-20", bands[1].Label())
	assert.Equal(t, "5.00", FormatPrice(bands[0].Price))
	assert.Equal(t, "7.50", FormatPrice(bands[1].Price))
}

func TestParseBandsBlankIsEmpty(t *testing.T) {
	bands, err := ParseBands("   ")
	require.NoError(t, err)
	assert.Empty(t, bands)
}

func TestParseBandsRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"min":1`,
		"not a list":    `{"min":1,"max":2,"price":"1.00"}`,
		"missing price": `[{"min":1,"max":2}]`,
		"missing min":   `[{"max":2,"price":"1.00"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			bands, err := ParseBands(raw)
			assert.Empty(t, bands)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestParseBandsKeepsUnparseablePrice(t *testing.T) {
	bands, err := ParseBands(`[{"min":1,"max":10,"price":"call us"}]`)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, "call us", FormatPrice(bands[0].Price))
}

func TestFormatPriceRoundsHalfUp(t *testing.T) {
	assert.Equal(t, "2.01", FormatPrice("2.005"))
	assert.Equal(t, "2.00", FormatPrice("2.004"))
	assert.Equal(t, "5.00", FormatPrice(5))
	assert.Equal(t, "5.00", FormatPrice(int64(5)))
	assert.Equal(t, "7.50", FormatPrice(7.5))
	assert.Equal(t, "3.13", FormatPrice(decimal.RequireFromString("3.125")))
	assert.Equal(t, "", FormatPrice(nil))
	assert.Equal(t, "poa", FormatPrice("poa"))
}

func TestSortLabelsNumeric(t *testing.T) {
	labels := []string{"100-200", "2-5", "11-20"}
	SortLabels(labels)
	assert.Equal(t, []string{"2-5", "11-20", "100-200"}, labels)
}

func TestSortLabelsLexicographicFallback(t *testing.T) {
	labels := []string{"b-x", "11-20", "a-y"}
	SortLabels(labels)
	assert.Equal(t, []string{"11-20", "a-y", "b-x"}, labels)
}

func TestUniqueLabelsDeduplicates(t *testing.T) {
	trade := []PriceBand{{Min: 1, Max: 10}, {Min: 11, Max: 20}}
	endc := []PriceBand{{Min: 1, Max: 10}, {Min: 21, Max: 50}}
	assert.Equal(t, []string{"1-10", "11-20", "21-50"}, UniqueLabels(trade, endc))
}

func TestParseColourOptions(t *testing.T) {
	names, codes := ParseColourOptions("Red:r, Blue")
	assert.Equal(t, []string{"Red", "Blue"}, names)
	assert.Equal(t, "r", codes["Red"])
	assert.Equal(t, "", codes["Blue"])

	names, codes = ParseColourOptions(" , Green : g ,")
	assert.Equal(t, []string{"Green"}, names)
	assert.Equal(t, "g", codes["Green"])
}
