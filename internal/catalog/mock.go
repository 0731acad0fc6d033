package catalog

import "github.com/shopspring/decimal"

// MockProducts returns the built-in demo catalog. Each call returns a fresh slice.
func MockProducts() []Product {
	return []Product{
		{
			ID:          "lx-001",
			Name:        "Royal Oak Chronograph",
			Brand:       "Audemars Piguet",
			Category:    "watches",
			Description: "41mm stainless steel chronograph with Grande Tapisserie dial.",
			Price:       decimal.RequireFromString("38500.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-001.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-002",
			Name:        "Nautilus 5711",
			Brand:       "Patek Philippe",
			Category:    "watches",
			Description: "Self-winding steel sports watch with horizontally embossed dial.",
			Price:       decimal.RequireFromString("120000.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-002.jpg",
			InStock:     false,
		},
		{
			ID:          "lx-003",
			Name:        "Birkin 30",
			Brand:       "Hermès",
			Category:    "handbags",
			Description: "Togo leather handbag with palladium hardware.",
			Price:       decimal.RequireFromString("24000.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-003.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-004",
			Name:        "Classic Flap Bag",
			Brand:       "Chanel",
			Category:    "handbags",
			Description: "Quilted lambskin with interlocking CC turn-lock.",
			Price:       decimal.RequireFromString("10200.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-004.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-005",
			Name:        "Love Bracelet",
			Brand:       "Cartier",
			Category:    "jewelry",
			Description: "18K yellow gold bracelet with screwdriver closure.",
			Price:       decimal.RequireFromString("7350.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-005.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-006",
			Name:        "Serpenti Viper Necklace",
			Brand:       "Bulgari",
			Category:    "jewelry",
			Description: "Rose gold pendant necklace set with pavé diamonds.",
			Price:       decimal.RequireFromString("5900.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-006.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-007",
			Name:        "So Kate Pumps",
			Brand:       "Christian Louboutin",
			Category:    "shoes",
			Description: "120mm patent leather pumps with signature red sole.",
			Price:       decimal.RequireFromString("795.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-007.jpg",
			InStock:     true,
		},
		{
			ID:          "lx-008",
			Name:        "Carré Silk Scarf",
			Brand:       "Hermès",
			Category:    "accessories",
			Description: "90cm hand-rolled silk twill scarf.",
			Price:       decimal.RequireFromString("495.00"),
			Currency:    "USD",
			ImageURL:    "https://images.luxury-retail.com/products/lx-008.jpg",
			InStock:     true,
		},
	}
}
