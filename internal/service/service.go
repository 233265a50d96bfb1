// Package service provides the implementation of marketplace business logic:
// it composes the catalog, the cart, and the session state, enforces the
// view-mode gate, and routes purchases through the correct path.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/abgdnv/localmarket/internal/cart"
	"github.com/abgdnv/localmarket/internal/catalog"
	apperrors "github.com/abgdnv/localmarket/internal/errors"
	"github.com/abgdnv/localmarket/internal/session"
	"github.com/google/uuid"
)

// Checkout methods. Both are terminal stubs: the cart is drained, settlement
// is out of scope.
const (
	CheckoutPayInApp   = "pay_in_app"
	CheckoutPayAtStore = "pay_at_store"
)

// MarketplaceService defines the operations reachable from the interface.
// Seller operations (AddProduct, UpdateProduct, DeleteProduct, StartEdit,
// StopEdit) require seller mode; buyer operations (AddToCart, Checkout)
// require buyer mode. Reads and ToggleMode are mode-agnostic.
type MarketplaceService interface {
	// ListStores returns stores whose name or product names contain query as
	// a case-insensitive substring; all stores when query is empty.
	ListStores(ctx context.Context, query string) []StoreDto

	// AddProduct creates a product with edit-flow defaults and immediately
	// enters edit state for it.
	// Returns ErrSellerOnly outside seller mode, ErrStoreNotFound for an
	// unknown store.
	AddProduct(ctx context.Context, storeID uuid.UUID) (*ProductDto, error)

	// UpdateProduct applies a field-level patch. Unparseable numeric text
	// leaves the corresponding field unchanged; quantity changes re-derive
	// the stock flag.
	// Returns ErrSellerOnly outside seller mode, ErrProductNotFound when the
	// target is gone (the catalog itself stays untouched).
	UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, update ProductUpdateDto) (*ProductDto, error)

	// DeleteProduct removes the product. Idempotent: deleting an already
	// deleted product succeeds.
	// Returns ErrSellerOnly outside seller mode.
	DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error

	// AddToCart snapshots the product into the cart, choosing the ordinary or
	// pre-order path from the product's current availability. The caller
	// never picks the path.
	// Returns ErrBuyerOnly outside buyer mode, ErrProductUnavailable for an
	// out-of-stock product that cannot be pre-ordered.
	AddToCart(ctx context.Context, storeID, productID uuid.UUID) (*CartDto, error)

	// Cart returns the current cart contents, count, and display total.
	Cart(ctx context.Context) CartDto

	// Checkout drains the cart and returns a receipt stub.
	// Returns ErrBuyerOnly outside buyer mode, ErrInvalidCheckoutMethod for
	// an unknown method.
	Checkout(ctx context.Context, method string) (*ReceiptDto, error)

	// Session returns the current view mode and edit target.
	Session(ctx context.Context) SessionDto

	// ToggleMode flips the buyer/seller view mode. It never mutates catalog
	// or cart state.
	ToggleMode(ctx context.Context) SessionDto

	// StartEdit marks a product as the current edit target.
	// Returns ErrSellerOnly outside seller mode.
	StartEdit(ctx context.Context, productID uuid.UUID) (*SessionDto, error)

	// StopEdit clears the edit target.
	// Returns ErrSellerOnly outside seller mode.
	StopEdit(ctx context.Context) (*SessionDto, error)
}

// Service implements MarketplaceService.
type Service struct {
	catalog *catalog.Catalog
	cart    *cart.Cart
	session *session.Manager
	logger  *slog.Logger
}

// NewService creates a new marketplace service over the given state.
func NewService(c *catalog.Catalog, crt *cart.Cart, s *session.Manager, logger *slog.Logger) *Service {
	return &Service{
		catalog: c,
		cart:    crt,
		session: s,
		logger:  logger.With("component", "service"),
	}
}

// StoreDto represents a store listing entry.
type StoreDto struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Distance float64      `json:"distance"`
	Rating   float64      `json:"rating"`
	Products []ProductDto `json:"products"`
}

// ProductDto represents a product.
type ProductDto struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	Quantity             int     `json:"quantity"`
	InStock              bool    `json:"in_stock"`
	PreorderAvailable    bool    `json:"preorder_available"`
	EstimatedRestockDate string  `json:"estimated_restock_date,omitempty"`
	DeliveryTime         string  `json:"delivery_time"`
}

// ProductUpdateDto is a field-level patch; absent fields are left untouched.
// Price and Quantity carry the raw field text so the service owns the
// unparseable-input rule instead of the JSON decoder.
type ProductUpdateDto struct {
	Name                 *string `json:"name"                   validate:"omitempty,max=100"`
	Price                *string `json:"price"                  validate:"omitempty,max=20"`
	Quantity             *string `json:"quantity"               validate:"omitempty,max=20"`
	PreorderAvailable    *bool   `json:"preorder_available"`
	EstimatedRestockDate *string `json:"estimated_restock_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTime         *string `json:"delivery_time"          validate:"omitempty,max=50"`
}

// CartLineDto represents one cart line item.
type CartLineDto struct {
	Product    ProductDto `json:"product"`
	IsPreorder bool       `json:"is_preorder"`
}

// CartDto represents the cart contents with derived values. Total is always
// recomputed on demand, never stored.
type CartDto struct {
	Items     []CartLineDto `json:"items"`
	ItemCount int           `json:"item_count"`
	Total     string        `json:"total"`
}

// ReceiptDto is the terminal checkout stub response.
type ReceiptDto struct {
	Method    string `json:"method"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

// SessionDto represents the view mode and edit target.
type SessionDto struct {
	Mode             string  `json:"mode"`
	EditingProductID *string `json:"editing_product_id,omitempty"`
}

// ListStores returns the filtered store listing.
func (s *Service) ListStores(_ context.Context, query string) []StoreDto {
	stores := catalog.FilterStores(s.catalog.Stores(), query)
	dtos := make([]StoreDto, len(stores))
	for i, st := range stores {
		dtos[i] = toStoreDto(st)
	}
	return dtos
}

// AddProduct creates a product with defaults and enters edit state for it.
func (s *Service) AddProduct(ctx context.Context, storeID uuid.UUID) (*ProductDto, error) {
	if err := s.requireSeller(); err != nil {
		return nil, err
	}
	p, err := s.catalog.AddProduct(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to add product to store %s: %w", storeID, err)
	}
	s.session.StartEdit(p.ID)
	s.logger.InfoContext(ctx, "product created", "store_id", storeID, "product_id", p.ID)
	return toProductDto(*p), nil
}

// UpdateProduct applies a validated patch to a product.
func (s *Service) UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, update ProductUpdateDto) (*ProductDto, error) {
	if err := s.requireSeller(); err != nil {
		return nil, err
	}
	patch := s.toPatch(ctx, update)
	updated, found := s.catalog.UpdateProduct(storeID, productID, patch)
	if !found {
		// The catalog no-ops on stale references; report it without failing
		// any state.
		return nil, fmt.Errorf("failed to update product %s in store %s: %w", productID, storeID, apperrors.ErrProductNotFound)
	}
	s.logger.InfoContext(ctx, "product updated", "store_id", storeID, "product_id", productID)
	return toProductDto(*updated), nil
}

// DeleteProduct removes a product from its store.
func (s *Service) DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	if err := s.requireSeller(); err != nil {
		return err
	}
	s.catalog.DeleteProduct(storeID, productID)
	s.logger.InfoContext(ctx, "product deleted", "store_id", storeID, "product_id", productID)
	return nil
}

// AddToCart snapshots a product into the cart via the path its availability
// dictates.
func (s *Service) AddToCart(ctx context.Context, storeID, productID uuid.UUID) (*CartDto, error) {
	if err := s.requireBuyer(); err != nil {
		return nil, err
	}
	p, err := s.catalog.FindProduct(storeID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s from store %s: %w", productID, storeID, err)
	}
	if !p.Available() {
		return nil, fmt.Errorf("product %s: %w", productID, apperrors.ErrProductUnavailable)
	}
	isPreorder := !p.InStock
	if err := s.cart.Add(*p, isPreorder); err != nil {
		return nil, fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}
	s.logger.InfoContext(ctx, "product added to cart", "product_id", productID, "preorder", isPreorder)
	dto := s.cartDto()
	return &dto, nil
}

// Cart returns the current cart contents.
func (s *Service) Cart(_ context.Context) CartDto {
	return s.cartDto()
}

// Checkout drains the cart and returns a receipt stub.
func (s *Service) Checkout(ctx context.Context, method string) (*ReceiptDto, error) {
	if err := s.requireBuyer(); err != nil {
		return nil, err
	}
	if method != CheckoutPayInApp && method != CheckoutPayAtStore {
		return nil, fmt.Errorf("checkout method %q: %w", method, apperrors.ErrInvalidCheckoutMethod)
	}
	items := s.cart.Drain()
	receipt := &ReceiptDto{
		Method:    method,
		ItemCount: len(items),
		Total:     cart.TotalOf(items),
	}
	s.logger.InfoContext(ctx, "checkout completed", "method", method, "items", receipt.ItemCount, "total", receipt.Total)
	return receipt, nil
}

// Session returns the current session state.
func (s *Service) Session(_ context.Context) SessionDto {
	return toSessionDto(s.session.Current())
}

// ToggleMode flips the view mode.
func (s *Service) ToggleMode(ctx context.Context) SessionDto {
	state := s.session.Toggle()
	s.logger.InfoContext(ctx, "view mode toggled", "mode", state.Mode.String())
	return toSessionDto(state)
}

// StartEdit marks a product as the edit target.
func (s *Service) StartEdit(_ context.Context, productID uuid.UUID) (*SessionDto, error) {
	if err := s.requireSeller(); err != nil {
		return nil, err
	}
	dto := toSessionDto(s.session.StartEdit(productID))
	return &dto, nil
}

// StopEdit clears the edit target.
func (s *Service) StopEdit(_ context.Context) (*SessionDto, error) {
	if err := s.requireSeller(); err != nil {
		return nil, err
	}
	dto := toSessionDto(s.session.StopEdit())
	return &dto, nil
}

func (s *Service) requireSeller() error {
	if s.session.Current().Mode != session.ModeSeller {
		return apperrors.ErrSellerOnly
	}
	return nil
}

func (s *Service) requireBuyer() error {
	if s.session.Current().Mode != session.ModeBuyer {
		return apperrors.ErrBuyerOnly
	}
	return nil
}

// toPatch converts the raw field text of an update into a typed patch.
// Unparseable numeric text leaves the field out of the patch entirely, so the
// stored value stays unchanged and no NaN can enter the model.
func (s *Service) toPatch(ctx context.Context, update ProductUpdateDto) catalog.ProductPatch {
	patch := catalog.ProductPatch{
		Name:                 update.Name,
		PreorderAvailable:    update.PreorderAvailable,
		EstimatedRestockDate: update.EstimatedRestockDate,
		DeliveryTime:         update.DeliveryTime,
	}
	if update.Price != nil {
		// ParseFloat accepts "NaN" and "Inf" literals with a nil error;
		// neither may enter the model, so they follow the same
		// leave-unchanged rule as a parse failure.
		if price, err := strconv.ParseFloat(*update.Price, 64); err == nil && !math.IsNaN(price) && !math.IsInf(price, 0) {
			patch.Price = &price
		} else {
			s.logger.DebugContext(ctx, "ignoring unparseable price input", "value", *update.Price)
		}
	}
	if update.Quantity != nil {
		if quantity, err := strconv.Atoi(*update.Quantity); err == nil {
			patch.Quantity = &quantity
		} else {
			s.logger.DebugContext(ctx, "ignoring unparseable quantity input", "value", *update.Quantity)
		}
	}
	return patch
}

func (s *Service) cartDto() CartDto {
	items := s.cart.Items()
	lines := make([]CartLineDto, len(items))
	for i, item := range items {
		lines[i] = CartLineDto{
			Product:    *toProductDto(item.Product),
			IsPreorder: item.IsPreorder,
		}
	}
	return CartDto{
		Items:     lines,
		ItemCount: len(items),
		Total:     s.cart.Total(),
	}
}

func toStoreDto(st catalog.Store) StoreDto {
	products := make([]ProductDto, len(st.Products))
	for i, p := range st.Products {
		products[i] = *toProductDto(p)
	}
	return StoreDto{
		ID:       st.ID.String(),
		Name:     st.Name,
		Distance: st.Distance,
		Rating:   st.Rating,
		Products: products,
	}
}

func toProductDto(p catalog.Product) *ProductDto {
	return &ProductDto{
		ID:                   p.ID.String(),
		Name:                 p.Name,
		Price:                p.Price,
		Quantity:             p.Quantity,
		InStock:              p.InStock,
		PreorderAvailable:    p.PreorderAvailable,
		EstimatedRestockDate: p.EstimatedRestockDate,
		DeliveryTime:         p.DeliveryTime,
	}
}

func toSessionDto(state session.State) SessionDto {
	dto := SessionDto{Mode: state.Mode.String()}
	if state.EditingProductID != nil {
		id := state.EditingProductID.String()
		dto.EditingProductID = &id
	}
	return dto
}
