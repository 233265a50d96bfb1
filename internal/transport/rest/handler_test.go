package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/abgdnv/localmarket/internal/errors"
	"github.com/abgdnv/localmarket/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMarketplaceService is a mock implementation of the MarketplaceService interface
type mockMarketplaceService struct {
	stores  []service.StoreDto
	product *service.ProductDto
	cart    service.CartDto
	receipt *service.ReceiptDto
	session service.SessionDto
	error   error
}

func (m *mockMarketplaceService) ListStores(_ context.Context, _ string) []service.StoreDto {
	return m.stores
}

func (m *mockMarketplaceService) AddProduct(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockMarketplaceService) UpdateProduct(_ context.Context, _, _ uuid.UUID, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockMarketplaceService) DeleteProduct(_ context.Context, _, _ uuid.UUID) error {
	return m.error
}

func (m *mockMarketplaceService) AddToCart(_ context.Context, _, _ uuid.UUID) (*service.CartDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.cart, nil
}

func (m *mockMarketplaceService) Cart(_ context.Context) service.CartDto {
	return m.cart
}

func (m *mockMarketplaceService) Checkout(_ context.Context, _ string) (*service.ReceiptDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.receipt, nil
}

func (m *mockMarketplaceService) Session(_ context.Context) service.SessionDto {
	return m.session
}

func (m *mockMarketplaceService) ToggleMode(_ context.Context) service.SessionDto {
	return m.session
}

func (m *mockMarketplaceService) StartEdit(_ context.Context, _ uuid.UUID) (*service.SessionDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.session, nil
}

func (m *mockMarketplaceService) StopEdit(_ context.Context) (*service.SessionDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.session, nil
}

func newTestRouter(mock *mockMarketplaceService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(mock, logger).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func Test_Handler_ListStores(t *testing.T) {
	// given
	mock := &mockMarketplaceService{
		stores: []service.StoreDto{{ID: uuid.NewString(), Name: "Mike's Electronics"}},
	}
	mux := newTestRouter(mock)

	// when
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/stores?query=mike", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var got []service.StoreDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Mike's Electronics", got[0].Name)
}

func Test_Handler_AddProduct(t *testing.T) {
	storeID := uuid.NewString()
	testCases := []struct {
		name         string
		target       string
		mock         *mockMarketplaceService
		expectedCode int
	}{
		{
			name:   "Success - product created",
			target: "/api/v1/stores/" + storeID + "/products",
			mock: &mockMarketplaceService{
				product: &service.ProductDto{ID: uuid.NewString(), DeliveryTime: "1-2 days", InStock: true},
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - seller mode required",
			target:       "/api/v1/stores/" + storeID + "/products",
			mock:         &mockMarketplaceService{error: apperrors.ErrSellerOnly},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Error - store not found",
			target:       "/api/v1/stores/" + storeID + "/products",
			mock:         &mockMarketplaceService{error: fmt.Errorf("add: %w", apperrors.ErrStoreNotFound)},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - invalid store id",
			target:       "/api/v1/stores/not-a-uuid/products",
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mock)

			// when
			rec := doRequest(t, mux, http.MethodPost, tc.target, "")

			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_UpdateProduct(t *testing.T) {
	target := "/api/v1/stores/" + uuid.NewString() + "/products/" + uuid.NewString()
	testCases := []struct {
		name         string
		body         string
		mock         *mockMarketplaceService
		expectedCode int
		expectValErr string
	}{
		{
			name: "Success - patch applied",
			body: `{"name":"Smart Watch","quantity":"5"}`,
			mock: &mockMarketplaceService{
				product: &service.ProductDto{Name: "Smart Watch", Quantity: 5, InStock: true},
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - malformed body",
			body:         `{"name":`,
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - invalid restock date",
			body:         `{"estimated_restock_date":"soon"}`,
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
			expectValErr: "EstimatedRestockDate",
		},
		{
			name:         "Error - product vanished",
			body:         `{"name":"ghost"}`,
			mock:         &mockMarketplaceService{error: fmt.Errorf("update: %w", apperrors.ErrProductNotFound)},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mock)

			// when
			rec := doRequest(t, mux, http.MethodPatch, target, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectValErr != "" {
				assert.Contains(t, rec.Body.String(), "validation_errors")
				assert.Contains(t, rec.Body.String(), tc.expectValErr)
			}
		})
	}
}

func Test_Handler_DeleteProduct(t *testing.T) {
	target := "/api/v1/stores/" + uuid.NewString() + "/products/" + uuid.NewString()

	t.Run("Success - idempotent delete", func(t *testing.T) {
		// given
		mux := newTestRouter(&mockMarketplaceService{})

		// when
		rec := doRequest(t, mux, http.MethodDelete, target, "")

		// then
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Error - seller mode required", func(t *testing.T) {
		// given
		mux := newTestRouter(&mockMarketplaceService{error: apperrors.ErrSellerOnly})

		// when
		rec := doRequest(t, mux, http.MethodDelete, target, "")

		// then
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_Handler_AddToCart(t *testing.T) {
	validBody := fmt.Sprintf(`{"store_id":%q,"product_id":%q}`, uuid.NewString(), uuid.NewString())
	testCases := []struct {
		name         string
		body         string
		mock         *mockMarketplaceService
		expectedCode int
	}{
		{
			name: "Success - item added",
			body: validBody,
			mock: &mockMarketplaceService{
				cart: service.CartDto{Items: []service.CartLineDto{{}}, ItemCount: 1, Total: "89.99"},
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - invalid product id",
			body:         fmt.Sprintf(`{"store_id":%q,"product_id":"nope"}`, uuid.NewString()),
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - product unavailable",
			body:         validBody,
			mock:         &mockMarketplaceService{error: fmt.Errorf("cart: %w", apperrors.ErrProductUnavailable)},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - product not found",
			body:         validBody,
			mock:         &mockMarketplaceService{error: fmt.Errorf("cart: %w", apperrors.ErrProductNotFound)},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - buyer mode required",
			body:         validBody,
			mock:         &mockMarketplaceService{error: apperrors.ErrBuyerOnly},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mock)

			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/cart/items", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_GetCart(t *testing.T) {
	// given
	mux := newTestRouter(&mockMarketplaceService{
		cart: service.CartDto{Items: []service.CartLineDto{}, ItemCount: 0, Total: "0.00"},
	})

	// when
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/cart", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var got service.CartDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "0.00", got.Total)
}

func Test_Handler_Checkout(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		mock         *mockMarketplaceService
		expectedCode int
	}{
		{
			name: "Success - pay in app",
			body: `{"method":"pay_in_app"}`,
			mock: &mockMarketplaceService{
				receipt: &service.ReceiptDto{Method: "pay_in_app", ItemCount: 1, Total: "89.99"},
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - unknown method rejected by validation",
			body:         `{"method":"barter"}`,
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing method",
			body:         `{}`,
			mock:         &mockMarketplaceService{},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mock)

			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/cart/checkout", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Session(t *testing.T) {
	// given
	mux := newTestRouter(&mockMarketplaceService{session: service.SessionDto{Mode: "buyer"}})

	// when
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/session", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mode":"buyer"`)
}

func Test_Handler_ToggleMode(t *testing.T) {
	// given
	mux := newTestRouter(&mockMarketplaceService{session: service.SessionDto{Mode: "seller"}})

	// when
	rec := doRequest(t, mux, http.MethodPost, "/api/v1/session/toggle", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mode":"seller"`)
}

func Test_Handler_EditState(t *testing.T) {
	// given
	editing := uuid.NewString()
	mux := newTestRouter(&mockMarketplaceService{
		session: service.SessionDto{Mode: "seller", EditingProductID: &editing},
	})

	// when / then
	rec := doRequest(t, mux, http.MethodPut, "/api/v1/session/editing/"+editing, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), editing)

	rec = doRequest(t, mux, http.MethodDelete, "/api/v1/session/editing", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Handler_HealthCheck(t *testing.T) {
	// given
	mux := newTestRouter(&mockMarketplaceService{})

	// when
	rec := doRequest(t, mux, http.MethodGet, "/healthz", "")

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
}
