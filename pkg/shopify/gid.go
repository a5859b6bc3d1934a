package shopify

import (
	"fmt"
	"strconv"
	"strings"
)

// ProductGID converts a numeric product ID to its global ID form.
func ProductGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", id)
}

// VariantGID converts a numeric variant ID to its global ID form.
func VariantGID(id int64) string {
	return fmt.Sprintf("gid://shopify/ProductVariant/%d", id)
}

// NumericID extracts the trailing numeric component of a global ID.
// Returns 0 when the GID has no numeric tail.
func NumericID(gid string) int64 {
	idx := strings.LastIndex(gid, "/")
	if idx < 0 || idx == len(gid)-1 {
		return 0
	}
	n, err := strconv.ParseInt(gid[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
