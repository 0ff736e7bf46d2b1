package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
)

// ProductPayload is the request body for product create and update.
type ProductPayload struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int32           `json:"stock"`
}

// Product is the transport representation of a product.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int32           `json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToDomainProduct converts a transport payload into the catalog domain model.
func ToDomainProduct(payload ProductPayload) (*catalogdomain.Product, error) {
	return catalogdomain.NewProduct(0, payload.Name, payload.Category, payload.Price, payload.Stock)
}

// FromDomainProduct converts a domain product to the transport representation.
func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
	}
}

func FromDomainProducts(products []*catalogdomain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, FromDomainProduct(product))
	}
	return result
}
