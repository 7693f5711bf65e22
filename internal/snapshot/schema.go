package snapshot

import "strings"

// Column aliases accepted for the identity fields. Rating, probability and
// adversity aliases come from configuration; these are fixed across tracks.
var (
	raceAliases    = []string{"race"}
	programAliases = []string{"program", "saddleclth", "pp"}
	nameAliases    = []string{"horse_name", "horse", "name"}
)

// headerIndex maps column names to their first position in the header row.
// A UTF-8 BOM on the first column is stripped.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		col = strings.TrimSpace(col)
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	return index
}

// resolveColumn probes candidates in order against the header; first match wins.
func resolveColumn(index map[string]int, candidates []string) (string, int, bool) {
	for _, c := range candidates {
		if i, ok := index[c]; ok {
			return c, i, true
		}
	}
	return "", 0, false
}
