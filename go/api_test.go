package salesserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	producthttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/http/mapper"
	catalogmemory "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/sales-inventory-api/internal/domains/catalog/application"
	customerhttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/http/mapper"
	customermemory "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/memory"
	customerapp "github.com/Apurer/sales-inventory-api/internal/domains/customers/application"
	salehttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/http/mapper"
	salesmemory "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/memory"
	salesworkflows "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/sales-inventory-api/internal/domains/sales/application"
	userhttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/http/mapper"
	usermemory "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/sales-inventory-api/internal/domains/users/application"
	userdomain "github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	users    *userapp.Service
	products *catalogmemory.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithSessions(t, usermemory.NewSessionStore(time.Hour))
}

func newTestServerWithSessions(t *testing.T, sessions userports.SessionStore) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := catalogmemory.NewRepository()
	customers := customermemory.NewRepository()
	userRepo := usermemory.NewRepository()
	users := userapp.NewService(userRepo, sessions)
	tx := transaction.NewInMemory()
	saleRepo := salesmemory.NewRepository()
	sales := salesapp.NewService(tx, products, customers, userRepo, saleRepo,
		salesapp.WithOutbox(salesmemory.NewOutbox()),
		salesapp.WithIdempotencyStore(salesmemory.NewIdempotencyStore()),
	)

	handlers := ApiHandleFunctions{
		Guard:       NewGuard(users),
		AuthAPI:     NewAuthAPI(users),
		ProductAPI:  NewProductAPI(catalogapp.NewService(products, catalogapp.WithTxManager(tx), catalogapp.WithUsage(saleRepo))),
		CustomerAPI: NewCustomerAPI(customerapp.NewService(customers)),
		SaleAPI:     NewSaleAPI(sales, salesworkflows.NewInlineSaleWorkflows(sales)),
	}
	return &testServer{
		t:        t,
		router:   NewRouterWithGinEngine(gin.New(), handlers),
		users:    users,
		products: products,
	}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username string, role userdomain.Role) string {
	s.t.Helper()
	_, err := s.users.Register(context.Background(), username, "secret-pass", role)
	require.NoError(s.t, err)
	rec := s.do(http.MethodPost, "/v1/auth/login", "", userhttpmapper.LoginRequest{Username: username, Password: "secret-pass"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var token userhttpmapper.TokenResponse
	decode(s.t, rec, &token)
	require.Equal(s.t, "Bearer", token.TokenType)
	return token.Token
}

func (s *testServer) createProduct(token, name, price string, stock int32) producthttpmapper.Product {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/products", token, producthttpmapper.ProductPayload{
		Name: name, Category: "peripherals", Price: decimal.RequireFromString(price), Stock: stock,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var product producthttpmapper.Product
	decode(s.t, rec, &product)
	return product
}

func (s *testServer) createCustomer(token string) customerhttpmapper.Customer {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/customers", token, customerhttpmapper.CustomerPayload{Name: "Ana Souza", TaxID: "52998224725"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var customer customerhttpmapper.Customer
	decode(s.t, rec, &customer)
	return customer
}

func (s *testServer) stockOf(id int64) int32 {
	s.t.Helper()
	product, err := s.products.GetByID(context.Background(), id)
	require.NoError(s.t, err)
	return product.Stock
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func TestRouter_RejectsMissingSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/v1/sales", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/v1/sales", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductAPI_WritesRequireManager(t *testing.T) {
	s := newTestServer(t)
	seller := s.login("seller", userdomain.RoleSeller)
	manager := s.login("manager", userdomain.RoleManager)

	rec := s.do(http.MethodPost, "/v1/products", seller, producthttpmapper.ProductPayload{Name: "Mouse", Price: decimal.NewFromInt(10), Stock: 1})
	require.Equal(t, http.StatusForbidden, rec.Code)

	product := s.createProduct(manager, "Mouse", "10.00", 1)
	rec = s.do(http.MethodGet, "/v1/products/"+itoa(product.ID), seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/v1/products", manager, producthttpmapper.ProductPayload{Name: "Mouse", Price: decimal.NewFromInt(12), Stock: 3})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/v1/products/abc", seller, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthAPI_RegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/v1/auth/register", "", userhttpmapper.RegisterRequest{Username: "joana", Password: "secret-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created userhttpmapper.User
	decode(t, rec, &created)
	assert.Equal(t, string(userdomain.RoleSeller), created.Role)

	rec = s.do(http.MethodPost, "/v1/auth/register", "", userhttpmapper.RegisterRequest{Username: "joana", Password: "other-pass"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/v1/auth/login", "", userhttpmapper.LoginRequest{Username: "joana", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/v1/auth/login", "", userhttpmapper.LoginRequest{Username: "joana", Password: "secret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	var token userhttpmapper.TokenResponse
	decode(t, rec, &token)

	rec = s.do(http.MethodGet, "/v1/auth/users", token.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roles []string
	decode(t, rec, &roles)
	assert.Equal(t, []string{"joana -> SELLER"}, roles)

	rec = s.do(http.MethodPost, "/v1/auth/logout", token.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/v1/auth/users", token.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaleAPI_CreateReadAndDelete(t *testing.T) {
	s := newTestServer(t)
	manager := s.login("manager", userdomain.RoleManager)
	seller := s.login("seller", userdomain.RoleSeller)
	mouse := s.createProduct(manager, "Mouse", "25.50", 10)
	keyboard := s.createProduct(manager, "Keyboard", "100.00", 3)
	customer := s.createCustomer(seller)

	payload := salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items: []salehttpmapper.SaleItemPayload{
			{ProductID: mouse.ID, Quantity: 2},
			{ProductID: keyboard.ID, Quantity: 1},
		},
	}
	rec := s.do(http.MethodPost, "/v1/sales", seller, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sale salehttpmapper.Sale
	decode(t, rec, &sale)
	require.Len(t, sale.Items, 2)
	assert.True(t, decimal.RequireFromString("151.00").Equal(sale.Total))
	assert.Equal(t, int32(8), s.stockOf(mouse.ID))
	assert.Equal(t, int32(2), s.stockOf(keyboard.ID))

	rec = s.do(http.MethodGet, "/v1/sales/"+itoa(sale.ID), seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/sales/mine", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []salehttpmapper.Sale
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, sale.SellerID, mine[0].SellerID)

	rec = s.do(http.MethodGet, "/v1/sales/total/mine", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var total salehttpmapper.SellerTotal
	decode(t, rec, &total)
	assert.True(t, sale.Total.Equal(total.Total))

	rec = s.do(http.MethodGet, "/v1/sales/customer/"+itoa(customer.ID), seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/sales?page=0&size=5", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page salehttpmapper.SalePage
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, 5, page.Size)

	rec = s.do(http.MethodDelete, "/v1/sales/"+itoa(sale.ID)+"?returnStock=true", seller, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int32(10), s.stockOf(mouse.ID))
	assert.Equal(t, int32(3), s.stockOf(keyboard.ID))

	rec = s.do(http.MethodGet, "/v1/sales/"+itoa(sale.ID), seller, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var problem apierrors.ProblemDetail
	decode(t, rec, &problem)
	assert.Equal(t, "sale", problem.Extensions["resourceType"])
}

func TestSaleAPI_InsufficientStockLeavesStockUntouched(t *testing.T) {
	s := newTestServer(t)
	manager := s.login("manager", userdomain.RoleManager)
	mouse := s.createProduct(manager, "Mouse", "10.00", 5)
	cable := s.createProduct(manager, "Cable", "3.00", 1)
	customer := s.createCustomer(manager)

	rec := s.do(http.MethodPost, "/v1/sales", manager, salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items: []salehttpmapper.SaleItemPayload{
			{ProductID: mouse.ID, Quantity: 2},
			{ProductID: cable.ID, Quantity: 4},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problem apierrors.ProblemDetail
	decode(t, rec, &problem)
	assert.Equal(t, apierrors.TypeInsufficientStock, problem.Type)
	assert.Equal(t, "Cable", problem.Extensions["productName"])
	assert.Equal(t, int32(5), s.stockOf(mouse.ID))
	assert.Equal(t, int32(1), s.stockOf(cable.ID))
}

func TestSaleAPI_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	manager := s.login("manager", userdomain.RoleManager)
	mouse := s.createProduct(manager, "Mouse", "10.00", 5)
	customer := s.createCustomer(manager)
	payload := salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items:      []salehttpmapper.SaleItemPayload{{ProductID: mouse.ID, Quantity: 1}},
	}

	first := s.do(http.MethodPost, "/v1/sales", manager, payload, IdempotencyKeyHeader, "order-42")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	replay := s.do(http.MethodPost, "/v1/sales", manager, payload, IdempotencyKeyHeader, "order-42")
	require.Equal(t, http.StatusCreated, replay.Code)

	var a, b salehttpmapper.Sale
	decode(t, first, &a)
	decode(t, replay, &b)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, int32(4), s.stockOf(mouse.ID))

	payload.Items[0].Quantity = 2
	conflict := s.do(http.MethodPost, "/v1/sales", manager, payload, IdempotencyKeyHeader, "order-42")
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, int32(4), s.stockOf(mouse.ID))
}

func TestSaleAPI_UpdateAndValidation(t *testing.T) {
	s := newTestServer(t)
	manager := s.login("manager", userdomain.RoleManager)
	mouse := s.createProduct(manager, "Mouse", "10.00", 5)
	customer := s.createCustomer(manager)

	rec := s.do(http.MethodPost, "/v1/sales", manager, salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items:      []salehttpmapper.SaleItemPayload{{ProductID: mouse.ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sale salehttpmapper.Sale
	decode(t, rec, &sale)

	rec = s.do(http.MethodPut, "/v1/sales/"+itoa(sale.ID), manager, salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items:      []salehttpmapper.SaleItemPayload{{ProductID: mouse.ID, Quantity: 4}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), s.stockOf(mouse.ID))

	rec = s.do(http.MethodPut, "/v1/sales/"+itoa(sale.ID), manager, salehttpmapper.SalePayload{
		CustomerID: 999,
		Items:      []salehttpmapper.SaleItemPayload{{ProductID: mouse.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int32(1), s.stockOf(mouse.ID))

	rec = s.do(http.MethodPost, "/v1/sales", manager, map[string]any{"customerId": customer.ID, "items": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/v1/sales/period?start=2024-01-02T00:00:00Z&end=2024-01-01T00:00:00Z", manager, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/v1/sales/period?start=yesterday&end=2024-01-01T00:00:00Z", manager, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/v1/sales/period?start=2000-01-01T00:00:00Z&end=2999-01-01T00:00:00Z", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inPeriod []salehttpmapper.Sale
	decode(t, rec, &inPeriod)
	assert.Len(t, inPeriod, 1)
}

func TestProductAPI_DeleteConflictsWhileSold(t *testing.T) {
	s := newTestServer(t)
	manager := s.login("manager", userdomain.RoleManager)
	seller := s.login("seller", userdomain.RoleSeller)
	mouse := s.createProduct(manager, "Mouse", "25.50", 4)
	customer := s.createCustomer(seller)

	rec := s.do(http.MethodPost, "/v1/sales", seller, salehttpmapper.SalePayload{
		CustomerID: customer.ID,
		Items:      []salehttpmapper.SaleItemPayload{{ProductID: mouse.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sale salehttpmapper.Sale
	decode(t, rec, &sale)

	rec = s.do(http.MethodDelete, "/v1/products/"+itoa(mouse.ID), manager, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, int32(3), s.stockOf(mouse.ID))

	rec = s.do(http.MethodDelete, "/v1/sales/"+itoa(sale.ID)+"?returnStock=true", seller, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int32(4), s.stockOf(mouse.ID))

	rec = s.do(http.MethodDelete, "/v1/products/"+itoa(mouse.ID), manager, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestSaleAPI_ListBeyondLastPage(t *testing.T) {
	s := newTestServer(t)
	seller := s.login("seller", userdomain.RoleSeller)

	rec := s.do(http.MethodGet, "/v1/sales?page=4611686018427387904&size=100", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page salehttpmapper.SalePage
	decode(t, rec, &page)
	assert.Empty(t, page.Content)
	assert.Equal(t, projection.MaxPage, page.Page)
}

// stuckSessions keeps sessions it was asked to revoke.
type stuckSessions struct {
	*usermemory.SessionStore
}

func (stuckSessions) Delete(context.Context, string) error {
	return errors.New("session store unavailable")
}

func TestAuthAPI_LogoutReportsStoreFailure(t *testing.T) {
	s := newTestServerWithSessions(t, stuckSessions{usermemory.NewSessionStore(time.Hour)})
	token := s.login("joana", userdomain.RoleSeller)

	rec := s.do(http.MethodPost, "/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/v1/auth/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
