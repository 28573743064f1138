package rollover

import (
	"sort"

	"mata/internal/model"
)

func sortedKeys(f model.StockFile) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
