// Package cart implements the buyer's shopping cart: an ordered, append-only
// sequence of product snapshots.
package cart

import (
	"fmt"
	"math"
	"sync"

	"github.com/abgdnv/localmarket/internal/catalog"
	apperrors "github.com/abgdnv/localmarket/internal/errors"
)

// LineItem is an immutable snapshot of a product captured at the moment of an
// add-to-cart action, plus the pre-order flag. It is a copy, not a live
// reference: later edits or deletion of the source product never alter it.
// Line items have positional identity only; adding the same product twice
// yields two distinct items.
type LineItem struct {
	Product    catalog.Product
	IsPreorder bool
}

// Cart is an ordered sequence of line items. Append-only through Add; drained
// only by Drain (the checkout path) or Reset. A mutex guards it because the
// HTTP transport may drive operations concurrently.
type Cart struct {
	mu    sync.Mutex
	items []LineItem
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a snapshot of the product. The pre-order flag must match the
// product's availability at call time: true only for an out-of-stock,
// pre-orderable product, false only for an in-stock one. Adding does not
// reserve or decrement stock; quantity is availability metadata, not a
// reservation counter.
func (c *Cart) Add(p catalog.Product, isPreorder bool) error {
	if isPreorder {
		if p.InStock || !p.PreorderAvailable {
			return apperrors.ErrPreorderNotAllowed
		}
	} else if !p.InStock {
		if p.PreorderAvailable {
			return apperrors.ErrPreorderRequired
		}
		return apperrors.ErrProductUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, LineItem{Product: p, IsPreorder: isPreorder})
	return nil
}

// Items returns a copy of the line items in add order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// ItemCount returns the number of line items. Each add contributes exactly
// one item regardless of the product's quantity field.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total returns the sum of line item prices formatted to two decimal places,
// "0.00" for an empty cart.
func (c *Cart) Total() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TotalOf(c.items)
}

// TotalOf sums the prices of the given line items, formatted to two decimal
// places. Prices are summed in cents so that the display total is exact.
func TotalOf(items []LineItem) string {
	var cents int64
	for _, item := range items {
		cents += int64(math.Round(item.Product.Price * 100))
	}
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// Drain atomically removes and returns all line items in add order. Checkout
// uses it to hand the items off under a single lock, so an add racing with
// checkout either makes the receipt or stays in the cart; settlement itself
// is out of scope.
func (c *Cart) Drain() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.items
	c.items = nil
	return items
}

// Reset drains the cart, discarding the items.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
