package salesserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customerhttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/http/mapper"
	customerports "github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

// CustomerAPI wires HTTP transport with the customers service.
type CustomerAPI struct {
	service customerports.Service
}

func NewCustomerAPI(service customerports.Service) CustomerAPI {
	return CustomerAPI{service: service}
}

// Post /v1/customers
// Register a customer
func (api *CustomerAPI) CreateCustomer(c *gin.Context) {
	var payload customerhttpmapper.CustomerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	customer, err := customerhttpmapper.ToDomainCustomer(payload)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	saved, err := api.service.CreateCustomer(c.Request.Context(), customer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerhttpmapper.FromDomainCustomer(saved))
}

// Get /v1/customers
func (api *CustomerAPI) ListCustomers(c *gin.Context) {
	customers, err := api.service.ListCustomers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromDomainCustomers(customers))
}

// Get /v1/customers/search?name=
// Case-insensitive name search
func (api *CustomerAPI) SearchCustomers(c *gin.Context) {
	name, ok := bindQueryString(c, "name")
	if !ok {
		return
	}
	customers, err := api.service.SearchCustomers(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromDomainCustomers(customers))
}

// Get /v1/customers/:customerId
func (api *CustomerAPI) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	customer, err := api.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromDomainCustomer(customer))
}

// Put /v1/customers/:customerId
func (api *CustomerAPI) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	var payload customerhttpmapper.CustomerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	changes, err := customerhttpmapper.ToDomainCustomer(payload)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateCustomer(c.Request.Context(), id, changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerhttpmapper.FromDomainCustomer(updated))
}

// Delete /v1/customers/:customerId
func (api *CustomerAPI) DeleteCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	if err := api.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	noContent(c)
}
