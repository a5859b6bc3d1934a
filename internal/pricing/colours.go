package pricing

import "strings"

// ParseColourOptions splits a comma-separated "Name:Code" list into the
// colour names (in authored order) and a name to SKU-code map. Entries
// without a code map to the empty string; blank entries are dropped.
func ParseColourOptions(raw string) ([]string, map[string]string) {
	codes := make(map[string]string)
	var names []string
	for _, entry := range strings.Split(raw, ",") {
		name, code, _ := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
		codes[name] = strings.TrimSpace(code)
	}
	return names, codes
}
