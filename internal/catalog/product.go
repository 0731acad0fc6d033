package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a single catalog entry as rendered in the grid.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Brand       string          `json:"brand" db:"brand"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	InStock     bool            `json:"inStock" db:"in_stock"`
}

// PriceLabel formats the price with its currency code, e.g. "USD 12,500.00".
func (p Product) PriceLabel() string {
	currency := strings.TrimSpace(p.Currency)
	if currency == "" {
		currency = "USD"
	}
	return currency + " " + groupThousands(p.Price.StringFixed(2))
}

// Path returns the detail route used by the sibling details app.
func (p Product) Path() string {
	return "/product/" + p.ID
}

// Clone returns a copy of products that shares no backing array with the input.
func Clone(products []Product) []Product {
	if len(products) == 0 {
		return nil
	}
	dup := make([]Product, len(products))
	copy(dup, products)
	return dup
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	if len(whole) <= 3 {
		return sign + fixed
	}
	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	out := sign + b.String()
	if frac != "" {
		out += "." + frac
	}
	return out
}
