package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
)

type normalizedCreateSaleInput struct {
	CustomerID int64                `json:"customerId"`
	SellerID   int64                `json:"sellerId"`
	Items      []normalizedItemLine `json:"items"`
}

type normalizedItemLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// FingerprintCreateSale builds a deterministic hash of the create-sale payload
// (excluding the idempotency key). Line order is significant.
func FingerprintCreateSale(input salestypes.CreateSaleInput) (string, error) {
	normalized := normalizedCreateSaleInput{
		CustomerID: input.CustomerID,
		SellerID:   input.SellerID,
		Items:      make([]normalizedItemLine, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedItemLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
