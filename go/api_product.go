package salesserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	producthttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

// ProductAPI wires HTTP transport with the catalog service.
type ProductAPI struct {
	service catalogports.Service
}

func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Post /v1/products
// Add a product to the catalog
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload producthttpmapper.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	product, err := producthttpmapper.ToDomainProduct(payload)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	saved, err := api.service.CreateProduct(c.Request.Context(), product)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producthttpmapper.FromDomainProduct(saved))
}

// Get /v1/products
// List every product
func (api *ProductAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProducts(products))
}

// Get /v1/products/:productId
// Find a product by id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(product))
}

// Put /v1/products/:productId
// Replace a product's name, category, price and stock
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload producthttpmapper.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	changes, err := producthttpmapper.ToDomainProduct(payload)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), id, changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(updated))
}

// Delete /v1/products/:productId
// Remove a product from the catalog
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	noContent(c)
}
