package catalog

import "github.com/google/uuid"

// Seed populates the catalog with the demo storefront data. It goes through
// the public mutation operations so seeded products obey the same invariants
// as seller-created ones.
func Seed(c *Catalog) {
	storeID := c.AddStore("Mike's Electronics", 0.8, 4.5)

	seedProduct(c, storeID, ProductPatch{
		Name:                 ptr("Wireless Earbuds"),
		Price:                ptr(89.99),
		Quantity:             ptr(5),
		PreorderAvailable:    ptr(true),
		EstimatedRestockDate: ptr("2025-01-25"),
		DeliveryTime:         ptr("2-3 days"),
	})
	seedProduct(c, storeID, ProductPatch{
		Name:         ptr("Phone Charger"),
		Price:        ptr(19.99),
		Quantity:     ptr(15),
		DeliveryTime: ptr("Same day"),
	})
	seedProduct(c, storeID, ProductPatch{
		Name:                 ptr("Smart Watch"),
		Price:                ptr(199.99),
		Quantity:             ptr(0),
		PreorderAvailable:    ptr(true),
		EstimatedRestockDate: ptr("2025-02-01"),
		DeliveryTime:         ptr("5-7 days"),
	})
}

func seedProduct(c *Catalog, storeID uuid.UUID, patch ProductPatch) {
	p, err := c.AddProduct(storeID)
	if err != nil {
		return
	}
	c.UpdateProduct(storeID, p.ID, patch)
}

func ptr[T any](v T) *T {
	return &v
}
