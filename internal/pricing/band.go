package pricing

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// PriceBand is one quantity bracket with its price. Price holds a
// decimal.Decimal when the authored value was numeric or a numeric
// string; otherwise the original decoded value is kept as-is so a
// bad value surfaces in the output instead of vanishing.
type PriceBand struct {
	Min   int
	Max   int
	Price any
}

// Label is the quantity-bracket key, "{min}-{max}".
func (b PriceBand) Label() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// ParseBands decodes a merchant-authored band list. Parsing is
// all-or-nothing: a decode failure, a non-array payload, or an element
// missing min/max/price yields an empty slice and a validation error.
// A blank payload is an empty list, not an error.
func ParseBands(raw string) ([]PriceBand, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var elems []struct {
		Min   *int            `json:"min"`
		Max   *int            `json:"max"`
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price bands are not a valid JSON array")
	}

	bands := make([]PriceBand, 0, len(elems))
	for i, el := range elems {
		if el.Min == nil || el.Max == nil || len(el.Price) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("price band %d is missing min, max or price", i))
		}
		bands = append(bands, PriceBand{
			Min:   *el.Min,
			Max:   *el.Max,
			Price: decodePrice(el.Price),
		})
	}
	return bands, nil
}

// decodePrice coerces the raw JSON price token to a decimal where it
// can; anything unparseable keeps its decoded form.
func decodePrice(raw json.RawMessage) any {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
		return n.String()
	}
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}

// FormatPrice renders a price as a string with exactly two fractional
// digits, rounding half up. Values that cannot be read as a number are
// returned unchanged.
func FormatPrice(v any) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.StringFixed(2)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d.StringFixed(2)
		}
		return val
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d.StringFixed(2)
		}
		return val.String()
	case float64:
		return decimal.NewFromFloat(val).StringFixed(2)
	case float32:
		return decimal.NewFromFloat32(val).StringFixed(2)
	case int:
		return decimal.NewFromInt(int64(val)).StringFixed(2)
	case int64:
		return decimal.NewFromInt(val).StringFixed(2)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// UniqueLabels returns the deduplicated quantity labels of both band
// lists, sorted by SortLabels.
func UniqueLabels(trade, endc []PriceBand) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, b := range append(append([]PriceBand{}, trade...), endc...) {
		label := b.Label()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	SortLabels(labels)
	return labels
}

// SortLabels orders labels ascending by the numeric value before the
// dash. If any label fails to parse the whole list falls back to a
// plain lexicographic sort.
func SortLabels(labels []string) {
	keys := make(map[string]int, len(labels))
	for _, label := range labels {
		head, _, _ := strings.Cut(label, "-")
		n, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			sort.Strings(labels)
			return
		}
		keys[label] = n
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return keys[labels[i]] < keys[labels[j]]
	})
}
