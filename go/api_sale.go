package salesserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	salehttpmapper "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/http/mapper"
	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	salesdomain "github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

// SaleAPI wires HTTP transport with the sale processor and its workflows.
type SaleAPI struct {
	service   salesports.Service
	workflows salesports.WorkflowOrchestrator
}

// NewSaleAPI creates a SaleAPI; a nil orchestrator sends creates straight to the service.
func NewSaleAPI(service salesports.Service, workflows salesports.WorkflowOrchestrator) SaleAPI {
	return SaleAPI{service: service, workflows: workflows}
}

// Post /v1/sales
// Record a sale made by the caller
func (api *SaleAPI) CreateSale(c *gin.Context) {
	sellerID, ok := callerID(c)
	if !ok {
		return
	}
	var payload salehttpmapper.SalePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	sale, err := api.createSale(c.Request.Context(), salehttpmapper.ToCreateSaleInput(payload, sellerID, key))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salehttpmapper.FromDomainSale(sale))
}

func (api *SaleAPI) createSale(ctx context.Context, input salestypes.CreateSaleInput) (*salesdomain.Sale, error) {
	if api.workflows != nil {
		return api.workflows.CreateSale(ctx, input)
	}
	return api.service.CreateSale(ctx, input)
}

// Get /v1/sales?page=&size=
// Page through sales, newest first
func (api *SaleAPI) ListSales(c *gin.Context) {
	input, ok := bindListSales(c)
	if !ok {
		return
	}
	page, err := api.service.ListSales(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainPage(page))
}

// Get /v1/sales/period?start=&end=
// Sales created within an inclusive period
func (api *SaleAPI) SalesByPeriod(c *gin.Context) {
	input, ok := bindPeriod(c)
	if !ok {
		return
	}
	sales, err := api.service.SalesByPeriod(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainSales(sales))
}

// Get /v1/sales/mine
// Sales made by the caller
func (api *SaleAPI) MySales(c *gin.Context) {
	sellerID, ok := callerID(c)
	if !ok {
		return
	}
	sales, err := api.service.SalesBySeller(c.Request.Context(), sellerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainSales(sales))
}

// Get /v1/sales/total/mine
// Summed value of the caller's sales
func (api *SaleAPI) MyTotal(c *gin.Context) {
	sellerID, ok := callerID(c)
	if !ok {
		return
	}
	total, err := api.service.TotalForSeller(c.Request.Context(), sellerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.SellerTotal{SellerID: sellerID, Total: total})
}

// Get /v1/sales/customer/:customerId
func (api *SaleAPI) SalesByCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	sales, err := api.service.SalesByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainSales(sales))
}

// Get /v1/sales/:saleId
func (api *SaleAPI) GetSale(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := api.service.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainSale(sale))
}

// Put /v1/sales/:saleId
// Replace a sale's customer and items; the caller becomes its seller
func (api *SaleAPI) UpdateSale(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	sellerID, ok := callerID(c)
	if !ok {
		return
	}
	var payload salehttpmapper.SalePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	sale, err := api.service.UpdateSale(c.Request.Context(), salehttpmapper.ToUpdateSaleInput(id, payload, sellerID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, salehttpmapper.FromDomainSale(sale))
}

// Delete /v1/sales/:saleId?returnStock=
// Remove a sale, optionally returning its units to stock
func (api *SaleAPI) DeleteSale(c *gin.Context) {
	id, ok := parseIDParam(c, "saleId")
	if !ok {
		return
	}
	returnStock, ok := bindReturnStock(c)
	if !ok {
		return
	}
	if err := api.service.DeleteSale(c.Request.Context(), salestypes.DeleteSaleInput{SaleID: id, ReturnStock: returnStock}); err != nil {
		respondServiceError(c, err)
		return
	}
	noContent(c)
}
