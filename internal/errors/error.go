// Package errors provides custom error types for marketplace operations.
package errors

import "errors"

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")

	// ErrProductUnavailable is returned when a product is out of stock
	// and cannot be pre-ordered.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrPreorderRequired is returned when an ordinary add is attempted
	// on a product that only supports the pre-order path.
	ErrPreorderRequired = errors.New("product requires pre-order")

	// ErrPreorderNotAllowed is returned when a pre-order add is attempted
	// on a product that does not qualify for it.
	ErrPreorderNotAllowed = errors.New("pre-order not allowed for this product")

	ErrSellerOnly = errors.New("operation allowed in seller mode only")
	ErrBuyerOnly  = errors.New("operation allowed in buyer mode only")

	ErrInvalidCheckoutMethod = errors.New("invalid checkout method")
)
