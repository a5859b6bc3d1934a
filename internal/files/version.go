package files

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

const forbiddenNameChars = `<>:"/\|?*`

// sanitizeBaseName normalizes a merchant-supplied archive name: strips
// filesystem-hostile characters, collapses whitespace to underscores
// and drops a trailing .zip. An empty result falls back to a default.
func sanitizeBaseName(name string) string {
	base := strings.TrimSpace(name)
	base = strings.ReplaceAll(base, "\n", " ")
	base = strings.ReplaceAll(base, "\r", " ")
	for _, ch := range forbiddenNameChars {
		base = strings.ReplaceAll(base, string(ch), "")
	}
	base = strings.Join(strings.Fields(base), "_")
	if strings.HasSuffix(strings.ToLower(base), ".zip") {
		base = base[:len(base)-4]
	}
	if base == "" {
		return "artwork_templates"
	}
	return base
}

// nextVersion scans the store's files for "{base}_{N}.zip" and returns
// the highest N plus one, starting at 1 when no version exists yet.
func nextVersion(existing []shopify.File, base string) int {
	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(base) + `_(\d+)\.zip$`)
	next := 1
	for _, f := range existing {
		name := f.Filename
		if name == "" {
			name = f.Alt
		}
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v >= next {
			next = v + 1
		}
	}
	return next
}
