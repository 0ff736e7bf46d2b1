package salesserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access is the authentication a route demands.
type Access int

const (
	// Public routes skip the session guard.
	Public Access = iota
	// Authenticated routes need a live session of any role.
	Authenticated
	// ManagerOnly routes need a session of a MANAGER.
	ManagerOnly
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access is the guard applied before HandlerFunc.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine add routes to existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := append(handleFunctions.Guard.chain(route.Access), route.HandlerFunc)
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, handlers...)
		case http.MethodPost:
			router.POST(route.Pattern, handlers...)
		case http.MethodPut:
			router.PUT(route.Pattern, handlers...)
		case http.MethodPatch:
			router.PATCH(route.Pattern, handlers...)
		case http.MethodDelete:
			router.DELETE(route.Pattern, handlers...)
		}
	}

	return router
}

// DefaultHandleFunc is the default handler for routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	// Guard resolves sessions for non-public routes.
	Guard Guard
	// Routes for the auth part of the API
	AuthAPI AuthAPI
	// Routes for the product part of the API
	ProductAPI ProductAPI
	// Routes for the customer part of the API
	CustomerAPI CustomerAPI
	// Routes for the sale part of the API
	SaleAPI SaleAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/v1/auth/register", Public, handleFunctions.AuthAPI.Register},
		{"Login", http.MethodPost, "/v1/auth/login", Public, handleFunctions.AuthAPI.Login},
		{"Logout", http.MethodPost, "/v1/auth/logout", Authenticated, handleFunctions.AuthAPI.Logout},
		{"ListUsers", http.MethodGet, "/v1/auth/users", Authenticated, handleFunctions.AuthAPI.ListUsers},

		{"ListProducts", http.MethodGet, "/v1/products", Authenticated, handleFunctions.ProductAPI.ListProducts},
		{"CreateProduct", http.MethodPost, "/v1/products", ManagerOnly, handleFunctions.ProductAPI.CreateProduct},
		{"GetProduct", http.MethodGet, "/v1/products/:productId", Authenticated, handleFunctions.ProductAPI.GetProduct},
		{"UpdateProduct", http.MethodPut, "/v1/products/:productId", ManagerOnly, handleFunctions.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/v1/products/:productId", ManagerOnly, handleFunctions.ProductAPI.DeleteProduct},

		{"ListCustomers", http.MethodGet, "/v1/customers", Authenticated, handleFunctions.CustomerAPI.ListCustomers},
		{"CreateCustomer", http.MethodPost, "/v1/customers", Authenticated, handleFunctions.CustomerAPI.CreateCustomer},
		{"SearchCustomers", http.MethodGet, "/v1/customers/search", Authenticated, handleFunctions.CustomerAPI.SearchCustomers},
		{"GetCustomer", http.MethodGet, "/v1/customers/:customerId", Authenticated, handleFunctions.CustomerAPI.GetCustomer},
		{"UpdateCustomer", http.MethodPut, "/v1/customers/:customerId", Authenticated, handleFunctions.CustomerAPI.UpdateCustomer},
		{"DeleteCustomer", http.MethodDelete, "/v1/customers/:customerId", Authenticated, handleFunctions.CustomerAPI.DeleteCustomer},

		{"CreateSale", http.MethodPost, "/v1/sales", Authenticated, handleFunctions.SaleAPI.CreateSale},
		{"ListSales", http.MethodGet, "/v1/sales", Authenticated, handleFunctions.SaleAPI.ListSales},
		{"SalesByPeriod", http.MethodGet, "/v1/sales/period", Authenticated, handleFunctions.SaleAPI.SalesByPeriod},
		{"MySales", http.MethodGet, "/v1/sales/mine", Authenticated, handleFunctions.SaleAPI.MySales},
		{"MyTotal", http.MethodGet, "/v1/sales/total/mine", Authenticated, handleFunctions.SaleAPI.MyTotal},
		{"SalesByCustomer", http.MethodGet, "/v1/sales/customer/:customerId", Authenticated, handleFunctions.SaleAPI.SalesByCustomer},
		{"GetSale", http.MethodGet, "/v1/sales/:saleId", Authenticated, handleFunctions.SaleAPI.GetSale},
		{"UpdateSale", http.MethodPut, "/v1/sales/:saleId", Authenticated, handleFunctions.SaleAPI.UpdateSale},
		{"DeleteSale", http.MethodDelete, "/v1/sales/:saleId", Authenticated, handleFunctions.SaleAPI.DeleteSale},
	}
}
