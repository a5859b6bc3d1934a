package pricing

// Fixed fields stamped onto every synthesized variant.
const (
	variantWeightUnit      = "g"
	variantInventoryPolicy = "continue"
)

// BuildVariants synthesizes the full candidate variant set from the two
// band lists and the optional colour dimension. The output is fully
// determined by the inputs: labels are sorted, colours keep authored
// order, and a variant is emitted for a customer type only when that
// tier actually has a band with the label.
func BuildVariants(trade, endc []PriceBand, sku string, unitWeight int, colours []string, colourCodes map[string]string) []CandidateVariant {
	labels := UniqueLabels(trade, endc)
	tradePrices := pricesByLabel(trade)
	endPrices := pricesByLabel(endc)

	var out []CandidateVariant
	emit := func(colour, label string, customerType CustomerType, price string) {
		effectiveSKU := sku
		if colour != "" {
			if code := colourCodes[colour]; code != "" {
				effectiveSKU = sku + "/" + code
			}
		}
		candidate := CandidateVariant{
			Price:        price,
			SKU:          effectiveSKU,
			Weight:       unitWeight,
			Label:        label,
			CustomerType: customerType,
			Colour:       colour,
		}
		if colour != "" {
			candidate.Option1 = colour
			candidate.Option2 = label
			candidate.Option3 = string(customerType)
		} else {
			candidate.Option1 = label
			candidate.Option2 = string(customerType)
		}
		out = append(out, candidate)
	}

	forEachLabel := func(colour string) {
		for _, label := range labels {
			if price, ok := tradePrices[label]; ok {
				emit(colour, label, CustomerTrade, price)
			}
			if price, ok := endPrices[label]; ok {
				emit(colour, label, CustomerEnd, price)
			}
		}
	}

	if len(colours) == 0 {
		forEachLabel("")
		return out
	}
	for _, colour := range colours {
		forEachLabel(colour)
	}
	return out
}

// pricesByLabel formats each band's price keyed by its label. A later
// band with a duplicate label wins, matching metafield authoring order.
func pricesByLabel(bands []PriceBand) map[string]string {
	prices := make(map[string]string, len(bands))
	for _, b := range bands {
		prices[b.Label()] = FormatPrice(b.Price)
	}
	return prices
}
