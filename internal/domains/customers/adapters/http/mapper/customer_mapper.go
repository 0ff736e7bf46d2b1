package mapper

import (
	"time"

	customerdomain "github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
)

// CustomerPayload is the request body for customer create and update.
type CustomerPayload struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"taxId" binding:"required"`
	Phone string `json:"phone"`
}

// Customer is the transport representation of a customer.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"taxId"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToDomainCustomer(payload CustomerPayload) (*customerdomain.Customer, error) {
	return customerdomain.NewCustomer(0, payload.Name, payload.TaxID, payload.Phone)
}

func FromDomainCustomer(customer *customerdomain.Customer) Customer {
	if customer == nil {
		return Customer{}
	}
	return Customer{
		ID:        customer.ID,
		Name:      customer.Name,
		TaxID:     customer.TaxID,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}

func FromDomainCustomers(customers []*customerdomain.Customer) []Customer {
	result := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		result = append(result, FromDomainCustomer(customer))
	}
	return result
}
