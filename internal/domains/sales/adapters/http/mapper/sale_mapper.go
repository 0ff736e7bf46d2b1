package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	salesdomain "github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

// SaleItemPayload requests quantity units of a product.
type SaleItemPayload struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int32 `json:"quantity" binding:"required"`
}

// SalePayload is the request body for sale create and update. The seller is
// always the authenticated caller.
type SalePayload struct {
	CustomerID int64             `json:"customerId" binding:"required"`
	Items      []SaleItemPayload `json:"items" binding:"required"`
}

type SaleItem struct {
	Line      int             `json:"line"`
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is the transport representation of a sale.
type Sale struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customerId"`
	SellerID   int64           `json:"sellerId"`
	Items      []SaleItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// SalePage is a page of sales, newest first.
type SalePage struct {
	Content       []Sale `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
}

// SellerTotal is the summed value of a seller's sales.
type SellerTotal struct {
	SellerID int64           `json:"sellerId"`
	Total    decimal.Decimal `json:"total"`
}

func toItemInputs(items []SaleItemPayload) []salestypes.ItemInput {
	inputs := make([]salestypes.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, salestypes.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return inputs
}

func ToCreateSaleInput(payload SalePayload, sellerID int64, idempotencyKey string) salestypes.CreateSaleInput {
	return salestypes.CreateSaleInput{
		CustomerID:     payload.CustomerID,
		SellerID:       sellerID,
		Items:          toItemInputs(payload.Items),
		IdempotencyKey: idempotencyKey,
	}
}

func ToUpdateSaleInput(saleID int64, payload SalePayload, sellerID int64) salestypes.UpdateSaleInput {
	return salestypes.UpdateSaleInput{
		SaleID:     saleID,
		CustomerID: payload.CustomerID,
		SellerID:   sellerID,
		Items:      toItemInputs(payload.Items),
	}
}

// FromDomainSale converts a domain sale to the transport representation.
func FromDomainSale(sale *salesdomain.Sale) Sale {
	if sale == nil {
		return Sale{}
	}
	items := sale.Items()
	out := Sale{
		ID:         sale.ID,
		CustomerID: sale.CustomerID,
		SellerID:   sale.SellerID,
		Items:      make([]SaleItem, 0, len(items)),
		Total:      sale.Total(),
		CreatedAt:  sale.CreatedAt,
		UpdatedAt:  sale.UpdatedAt,
	}
	for _, item := range items {
		out.Items = append(out.Items, SaleItem{
			Line:      item.Line,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return out
}

func FromDomainSales(sales []*salesdomain.Sale) []Sale {
	result := make([]Sale, 0, len(sales))
	for _, sale := range sales {
		result = append(result, FromDomainSale(sale))
	}
	return result
}

func FromDomainPage(page projection.Page[*salesdomain.Sale]) SalePage {
	mapped := projection.Map(page, FromDomainSale)
	return SalePage{
		Content:       mapped.Items,
		Page:          mapped.Page,
		Size:          mapped.Size,
		TotalElements: mapped.TotalElements,
		TotalPages:    mapped.TotalPages(),
	}
}
