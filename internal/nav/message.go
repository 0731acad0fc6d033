package nav

import (
	"github.com/luxury-retail/productlist/internal/catalog"
)

// TypeNavigateToApp2 asks the container to open the product detail app.
const TypeNavigateToApp2 = "NAVIGATE_TO_APP2"

// SchemaVersion is the version stamped on every container message.
const SchemaVersion = 1

// Message is the payload posted to the container application.
type Message struct {
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Product catalog.Product `json:"product"`
}

// NavigateToApp2 builds the selection message for p.
func NavigateToApp2(p catalog.Product) Message {
	return Message{Type: TypeNavigateToApp2, Version: SchemaVersion, Product: p}
}
