//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "sales-inventory-api"
	ConsumerName = "sales-portal"

	StateCatalogSeeded  = "product 101 with 10 units and customer 201 exist"
	StateProductMissing = "no product with id 404"
	StateStockExhausted = "product 101 has 1 unit left"
)

const (
	ExistingProductID  int64 = 101
	MissingProductID   int64 = 404
	ExistingCustomerID int64 = 201

	ProductName     = "Pact Notebook"
	ProductCategory = "stationery"
	ProductPrice    = "12.50"

	CustomerName  = "Pact Customer"
	CustomerTaxID = "52998224725"

	SellerUsername = "pact-seller"
	SellerPassword = "pact-pass"

	// BearerToken is the session token the provider issues to the pact seller.
	BearerToken = "pact-session-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the sales portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleSalePayload asks for quantity units of the seeded product.
func ExampleSalePayload(quantity int32) map[string]any {
	return map[string]any{
		"customerId": ExistingCustomerID,
		"items": []map[string]any{
			{"productId": ExistingProductID, "quantity": quantity},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
