package catalog

import "strings"

// FilterStores returns the subset of stores whose name, or any contained
// product name, contains query as a case-insensitive substring. The filter
// operates at store granularity: a matching store is returned whole, with all
// of its products. An empty query returns the input unchanged in order and
// content. Pure function, no mutation.
func FilterStores(stores []Store, query string) []Store {
	if query == "" {
		return stores
	}
	q := strings.ToLower(query)

	filtered := make([]Store, 0, len(stores))
	for _, s := range stores {
		if storeMatches(s, q) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func storeMatches(s Store, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(s.Name), loweredQuery) {
		return true
	}
	for _, p := range s.Products {
		if strings.Contains(strings.ToLower(p.Name), loweredQuery) {
			return true
		}
	}
	return false
}
