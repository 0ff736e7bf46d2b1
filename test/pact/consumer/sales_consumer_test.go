//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/sales-inventory-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Stock    int32  `json:"stock"`
}

type salePayload struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	SellerID   int64  `json:"sellerId"`
	Total      string `json:"total"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status      int
	problemType string
	detail      string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.problemType, e.detail, e.status)
}

func TestSalesPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	authorization := matchers.S("Bearer " + pacttest.BearerToken)
	productMatcher := matchers.Map{
		"id":       matchers.Like(pacttest.ExistingProductID),
		"name":     matchers.Like(pacttest.ProductName),
		"category": matchers.Like(pacttest.ProductCategory),
		"price":    matchers.Term(pacttest.ProductPrice, `^\d+(\.\d+)?$`),
		"stock":    matchers.Like(10),
	}

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a request to fetch an existing product").
		WithRequest("GET", fmt.Sprintf("/v1/products/%d", pacttest.ExistingProductID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", authorization)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", fmt.Sprintf("/v1/products/%d", pacttest.MissingProductID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", authorization)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a request to record a sale").
		WithRequest("POST", "/v1/sales", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", authorization)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleSalePayload(2))
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":         matchers.Like(1),
				"customerId": matchers.Like(pacttest.ExistingCustomerID),
				"sellerId":   matchers.Like(1),
				"total":      matchers.Term("25", `^\d+(\.\d+)?$`),
				"items": matchers.EachLike(matchers.Map{
					"line":      matchers.Like(1),
					"productId": matchers.Like(pacttest.ExistingProductID),
					"quantity":  matchers.Like(2),
					"unitPrice": matchers.Term(pacttest.ProductPrice, `^\d+(\.\d+)?$`),
					"subtotal":  matchers.Term("25", `^\d+(\.\d+)?$`),
				}, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateStockExhausted).
		UponReceiving("a sale that exceeds the remaining stock").
		WithRequest("POST", "/v1/sales", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", authorization)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleSalePayload(5))
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/insufficient-stock"),
				"title":  matchers.S("Insufficient Stock"),
				"status": matchers.Like(http.StatusBadRequest),
				"detail": matchers.S("insufficient stock for product: " + pacttest.ProductName),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newSalesClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var product productPayload
		if err := client.call(ctx, http.MethodGet, fmt.Sprintf("/v1/products/%d", pacttest.ExistingProductID), nil, &product); err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID {
			return fmt.Errorf("expected product %d, got %+v", pacttest.ExistingProductID, product)
		}

		var apiErr apiError
		err := client.call(ctx, http.MethodGet, fmt.Sprintf("/v1/products/%d", pacttest.MissingProductID), nil, nil)
		if !errors.As(err, &apiErr) || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for product %d, got %v", pacttest.MissingProductID, err)
		}

		var sale salePayload
		if err := client.call(ctx, http.MethodPost, "/v1/sales", pacttest.ExampleSalePayload(2), &sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if sale.ID == 0 || sale.CustomerID != pacttest.ExistingCustomerID {
			return fmt.Errorf("unexpected sale %+v", sale)
		}

		err = client.call(ctx, http.MethodPost, "/v1/sales", pacttest.ExampleSalePayload(5), nil)
		if !errors.As(err, &apiErr) || apiErr.problemType != "/problems/insufficient-stock" {
			return fmt.Errorf("expected insufficient stock problem, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type salesClient struct {
	baseURL    string
	httpClient *http.Client
}

func newSalesClient(config pactconsumer.MockServerConfig) *salesClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &salesClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *salesClient) call(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+pacttest.BearerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		status := problem.Status
		if status == 0 {
			status = res.StatusCode
		}
		return apiError{status: status, problemType: problem.Type, detail: problem.Detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
