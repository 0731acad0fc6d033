package catalog

import "strings"

// AllCategories is the sentinel category that disables category filtering.
const AllCategories = "All"

// View is the derived, unpersisted projection of the product list.
type View struct {
	Products   []Product
	Categories []string
}

// Derive computes the filtered products and the category list in one pass over state.
func Derive(products []Product, category, query string) View {
	return View{
		Products:   Filter(products, category, query),
		Categories: Categories(products),
	}
}

// Filter returns the products in their original order whose category matches
// (or category is "All") and whose name or brand contains query, ignoring case.
func Filter(products []Product, category, query string) []Product {
	needle := strings.ToLower(query)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchesCategory(p, category) {
			continue
		}
		if !matchesQuery(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns "All" followed by each distinct category in order of first appearance.
func Categories(products []Product) []string {
	seen := map[string]struct{}{AllCategories: {}}
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// NextCategory returns the category after current in categories, wrapping around.
// Unknown values (a category whose last product disappeared) restart at "All".
func NextCategory(categories []string, current string, step int) string {
	if len(categories) == 0 {
		return AllCategories
	}
	for i, c := range categories {
		if c == current {
			n := len(categories)
			return categories[((i+step)%n+n)%n]
		}
	}
	return AllCategories
}

func matchesCategory(p Product, category string) bool {
	return category == AllCategories || p.Category == category
}

func matchesQuery(p Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle)
}
