// Package catalog owns the canonical list of stores and their products and
// enforces the stock/pre-order invariants on every write.
package catalog

import (
	"math"
	"sync"

	apperrors "github.com/abgdnv/localmarket/internal/errors"
	"github.com/google/uuid"
)

// Product represents a sellable item with stock, price, and delivery metadata.
// Quantity is the source of truth for availability: InStock is derived from it
// on every quantity-touching write and is never stored independently.
type Product struct {
	ID                uuid.UUID
	Name              string
	Price             float64
	Quantity          int
	InStock           bool
	PreorderAvailable bool
	// EstimatedRestockDate is advisory metadata (YYYY-MM-DD), meaningful only
	// for out-of-stock products with PreorderAvailable set.
	EstimatedRestockDate string
	DeliveryTime         string
}

// Available reports whether any cart action is permitted for the product:
// either it is in stock, or it is out of stock but pre-orderable.
func (p Product) Available() bool {
	return p.InStock || p.PreorderAvailable
}

// Store is a seller entity exclusively owning an ordered sequence of products.
// Distance and Rating are display-only metadata.
type Store struct {
	ID       uuid.UUID
	Name     string
	Distance float64
	Rating   float64
	Products []Product
}

// ProductPatch is a field-level partial update. Nil fields are left untouched.
// The patch deliberately has no InStock field: availability is re-derived from
// Quantity by the merge, so an inconsistent pair cannot be expressed at all.
type ProductPatch struct {
	Name                 *string
	Price                *float64
	Quantity             *int
	PreorderAvailable    *bool
	EstimatedRestockDate *string
	DeliveryTime         *string
}

// Catalog is an in-memory registry of stores and products. All state is
// process-local and transient. A mutex guards it because the HTTP transport
// may drive operations concurrently.
type Catalog struct {
	mu     sync.RWMutex
	stores []*Store
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// AddStore registers a new store and returns its generated ID.
func (c *Catalog) AddStore(name string, distance, rating float64) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	store := &Store{
		ID:       uuid.New(),
		Name:     name,
		Distance: distance,
		Rating:   rating,
	}
	c.stores = append(c.stores, store)
	return store.ID
}

// Stores returns a deep copy of all stores in registration order. The result
// is detached from the catalog: re-invoking yields the same content until the
// next mutation, and callers can never alias internal state.
func (c *Catalog) Stores() []Store {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]Store, 0, len(c.stores))
	for _, s := range c.stores {
		list = append(list, copyStore(s))
	}
	return list
}

// FindStore returns a deep copy of a single store.
// Returns ErrStoreNotFound if no store exists with the given ID.
func (c *Catalog) FindStore(storeID uuid.UUID) (*Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.findStore(storeID)
	if s == nil {
		return nil, apperrors.ErrStoreNotFound
	}
	cp := copyStore(s)
	return &cp, nil
}

// FindProduct returns a copy of the identified product.
// Returns ErrStoreNotFound or ErrProductNotFound when the target is missing.
func (c *Catalog) FindProduct(storeID, productID uuid.UUID) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.findStore(storeID)
	if s == nil {
		return nil, apperrors.ErrStoreNotFound
	}
	for _, p := range s.Products {
		if p.ID == productID {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrProductNotFound
}

// AddProduct appends a new product with edit-flow defaults to the store and
// returns a copy of it. The InStock=true/Quantity=0 pair is an intentional
// transient state: the seller flow is expected to set a real quantity with the
// first UpdateProduct call, which re-derives InStock.
// Returns ErrStoreNotFound if no store exists with the given ID.
func (c *Catalog) AddProduct(storeID uuid.UUID) (*Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findStore(storeID)
	if s == nil {
		return nil, apperrors.ErrStoreNotFound
	}
	product := Product{
		ID:                uuid.New(),
		Name:              "",
		Price:             0,
		Quantity:          0,
		InStock:           true,
		PreorderAvailable: false,
		DeliveryTime:      "1-2 days",
	}
	s.Products = append(s.Products, product)
	return &product, nil
}

// UpdateProduct applies a validated field-level merge onto the identified
// product and returns a copy of the result. A missing store or product is a
// silent no-op (found=false): a stale reference from a racing edit flow is a
// recoverable condition, not an error. Negative price or quantity values are
// normalized to zero, a non-finite price is ignored, and any quantity change
// re-derives InStock.
func (c *Catalog) UpdateProduct(storeID, productID uuid.UUID, patch ProductPatch) (*Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findStore(storeID)
	if s == nil {
		return nil, false
	}
	for i := range s.Products {
		if s.Products[i].ID != productID {
			continue
		}
		p := &s.Products[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Price != nil && !math.IsNaN(*patch.Price) && !math.IsInf(*patch.Price, 0) {
			p.Price = max(*patch.Price, 0)
		}
		if patch.Quantity != nil {
			p.Quantity = max(*patch.Quantity, 0)
			p.InStock = p.Quantity > 0
		}
		if patch.PreorderAvailable != nil {
			p.PreorderAvailable = *patch.PreorderAvailable
		}
		if patch.EstimatedRestockDate != nil {
			p.EstimatedRestockDate = *patch.EstimatedRestockDate
		}
		if patch.DeliveryTime != nil {
			p.DeliveryTime = *patch.DeliveryTime
		}
		cp := *p
		return &cp, true
	}
	return nil, false
}

// DeleteProduct removes the product from the store's sequence. Idempotent:
// deleting a non-existent store or product is a no-op.
func (c *Catalog) DeleteProduct(storeID, productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findStore(storeID)
	if s == nil {
		return
	}
	for i := range s.Products {
		if s.Products[i].ID == productID {
			s.Products = append(s.Products[:i], s.Products[i+1:]...)
			return
		}
	}
}

// findStore must be called with the mutex held.
func (c *Catalog) findStore(storeID uuid.UUID) *Store {
	for _, s := range c.stores {
		if s.ID == storeID {
			return s
		}
	}
	return nil
}

func copyStore(s *Store) Store {
	cp := *s
	cp.Products = make([]Product, len(s.Products))
	copy(cp.Products, s.Products)
	return cp
}
