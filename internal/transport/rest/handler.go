// Package rest provides HTTP handlers for the marketplace command surface.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/abgdnv/localmarket/internal/errors"
	"github.com/abgdnv/localmarket/internal/service"
	"github.com/abgdnv/localmarket/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	service  service.MarketplaceService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the marketplace API with the provided service.
func NewHandler(service service.MarketplaceService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the marketplace service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stores", h.ListStores)

		r.Route("/stores/{storeID}/products", func(r chi.Router) {
			r.Post("/", h.AddProduct)
			r.Patch("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddToCart)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/toggle", h.ToggleMode)
			r.Put("/editing/{productID}", h.StartEdit)
			r.Delete("/editing", h.StopEdit)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// AddToCartRequest identifies the product to snapshot into the cart. The
// ordinary/pre-order path is chosen server-side from current availability.
type AddToCartRequest struct {
	StoreID   string `json:"store_id"   validate:"required,uuid"`
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// CheckoutRequest carries the terminal payment action.
type CheckoutRequest struct {
	Method string `json:"method" validate:"required,oneof=pay_in_app pay_at_store"`
}

// ListStores returns the store listing filtered by the query parameter.
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query().Get("query")
	mLogger.DebugContext(r.Context(), "Received request to list stores", "query", query)
	list := h.service.ListStores(r.Context(), query)
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// AddProduct creates a new product with edit-flow defaults in the store.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	storeID, ok := web.ParseUUID(w, r, mLogger, "storeID")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add product", "store_id", storeID)
	created, err := h.service.AddProduct(r.Context(), storeID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to add product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// UpdateProduct applies a field-level patch to a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	storeID, ok := web.ParseUUID(w, r, mLogger, "storeID")
	if !ok {
		return
	}
	productID, ok := web.ParseUUID(w, r, mLogger, "productID")
	if !ok {
		return
	}
	var update service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, update) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "store_id", storeID, "product_id", productID)
	updated, err := h.service.UpdateProduct(r.Context(), storeID, productID, update)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %s", productID))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct removes a product. Deleting an already deleted product is a
// no-op and still responds 204.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	storeID, ok := web.ParseUUID(w, r, mLogger, "storeID")
	if !ok {
		return
	}
	productID, ok := web.ParseUUID(w, r, mLogger, "productID")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "store_id", storeID, "product_id", productID)
	if err := h.service.DeleteProduct(r.Context(), storeID, productID); err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %s", productID))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", productID)
	w.WriteHeader(http.StatusNoContent)
}

// GetCart returns the cart contents with derived count and total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.service.Cart(r.Context()))
}

// AddToCart snapshots a product into the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, req) {
		return
	}
	storeID, productID, ok := parseCartTarget(w, mLogger, req)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add product to cart", "store_id", storeID, "product_id", productID)
	cartDto, err := h.service.AddToCart(r.Context(), storeID, productID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to add product with ID %s to cart", productID))
		return
	}
	mLogger.InfoContext(r.Context(), "Product added to cart", "ID", productID, "item_count", cartDto.ItemCount)
	web.RespondJSON(w, mLogger, http.StatusCreated, cartDto)
}

// Checkout drains the cart. Terminal stub: no settlement happens.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, req) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received checkout request", "method", req.Method)
	receipt, err := h.service.Checkout(r.Context(), req.Method)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to check out")
		return
	}
	mLogger.InfoContext(r.Context(), "Checkout completed", "method", receipt.Method, "items", receipt.ItemCount)
	web.RespondJSON(w, mLogger, http.StatusOK, receipt)
}

// GetSession returns the current view mode and edit target.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.service.Session(r.Context()))
}

// ToggleMode flips the buyer/seller view mode.
func (h *Handler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	state := h.service.ToggleMode(r.Context())
	mLogger.InfoContext(r.Context(), "View mode toggled", "mode", state.Mode)
	web.RespondJSON(w, mLogger, http.StatusOK, state)
}

// StartEdit marks a product as the current edit target.
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productID, ok := web.ParseUUID(w, r, mLogger, "productID")
	if !ok {
		return
	}
	state, err := h.service.StartEdit(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to enter edit state")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, state)
}

// StopEdit clears the edit target.
func (h *Handler) StopEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	state, err := h.service.StopEdit(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to exit edit state")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, state)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateStruct validates a request DTO and writes the field-level error
// response on failure. Returns true when validation passed.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, v any) bool {
	if err := h.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps service errors onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrSellerOnly), errors.Is(err, apperrors.ErrBuyerOnly):
		mLogger.WarnContext(r.Context(), "Operation not reachable in current view mode", "error", err)
		web.RespondError(w, mLogger, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrStoreNotFound), errors.Is(err, apperrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Target not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrProductUnavailable),
		errors.Is(err, apperrors.ErrPreorderRequired),
		errors.Is(err, apperrors.ErrPreorderNotAllowed):
		mLogger.WarnContext(r.Context(), "Product not available for cart action", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrInvalidCheckoutMethod):
		mLogger.WarnContext(r.Context(), "Invalid checkout method", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

func parseCartTarget(w http.ResponseWriter, mLogger *slog.Logger, req AddToCartRequest) (storeID, productID uuid.UUID, ok bool) {
	var err error
	if storeID, err = uuid.Parse(req.StoreID); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid store_id: %s", req.StoreID))
		return storeID, productID, false
	}
	if productID, err = uuid.Parse(req.ProductID); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid product_id: %s", req.ProductID))
		return storeID, productID, false
	}
	return storeID, productID, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
