package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopease/shopease-backend/internal/cart"
	"github.com/shopease/shopease-backend/internal/products"
	pkgAuth "github.com/shopease/shopease-backend/pkg/auth"
	"github.com/shopease/shopease-backend/pkg/auth/session"
	"github.com/shopease/shopease-backend/pkg/config"
	"github.com/shopease/shopease-backend/pkg/enums"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
)

type staticCatalog struct {
	items map[uuid.UUID]products.ProductDTO
}

func (s staticCatalog) List(_ context.Context, _ products.ListFilter) ([]products.ProductDTO, error) {
	out := make([]products.ProductDTO, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s staticCatalog) Get(_ context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &item, nil
}

func (s staticCatalog) Create(context.Context, products.CreateProductRequest) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s staticCatalog) Update(context.Context, uuid.UUID, products.UpdateProductRequest) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s staticCatalog) Delete(context.Context, uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

type allowAllSessions struct{}

func (allowAllSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "development", Port: "8080"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "shopease", ExpirationMinutes: 60},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	carts, err := cart.NewManager(cart.NewMemoryPersistence(), logg, nil)
	require.NoError(t, err)

	headphonesID := uuid.New()
	catalog := staticCatalog{items: map[uuid.UUID]products.ProductDTO{
		headphonesID: {
			ID: headphonesID, Name: "Studio Headphones", Category: "audio",
			Price: "149.99", PricePaise: 14999, Stock: 5, InStock: true, IsActive: true,
		},
	}}

	return NewRouter(Deps{
		Config:         testConfig(),
		Logger:         logg,
		SessionManager: allowAllSessions{},
		Carts:          carts,
		ProductService: catalog,
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "shopper@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func TestHealthLive(t *testing.T) {
	router := testRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestProductListIsPublic(t *testing.T) {
	router := testRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Studio Headphones")
}

func TestOrdersRequireAuth(t *testing.T) {
	router := testRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGuestCartFlow(t *testing.T) {
	router := testRouter(t)

	var productID uuid.UUID
	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	var listEnvelope struct {
		Data []products.ProductDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data, 1)
	productID = listEnvelope.Data[0].ID

	addReq := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"`+productID.String()+`","quantity":2}`))
	addResp := httptest.NewRecorder()
	router.ServeHTTP(addResp, addReq)
	require.Equal(t, http.StatusOK, addResp.Code)

	token := addResp.Header().Get("X-Cart-Token")
	require.NotEmpty(t, token)

	fetchReq := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	fetchReq.Header.Set("X-Cart-Token", token)
	fetchResp := httptest.NewRecorder()
	router.ServeHTTP(fetchResp, fetchReq)
	require.Equal(t, http.StatusOK, fetchResp.Code)

	var cartEnvelope struct {
		Data struct {
			ItemCount  int    `json:"item_count"`
			Total      string `json:"total"`
			TotalPaise int64  `json:"total_paise"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(fetchResp.Body.Bytes(), &cartEnvelope))
	require.Equal(t, 2, cartEnvelope.Data.ItemCount)
	require.EqualValues(t, 29998, cartEnvelope.Data.TotalPaise)
	require.Equal(t, "299.98", cartEnvelope.Data.Total)
}
