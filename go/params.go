package salesserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

// IdempotencyKeyHeader carries the client-chosen key of a create request.
const IdempotencyKeyHeader = "Idempotency-Key"

// parseIDParam binds a simple-style path parameter; on failure it writes a 400.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, c.Param(name), &id)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid %s: %v", name, err)))
		return 0, false
	}
	return id, true
}

func bindListSales(c *gin.Context) (salestypes.ListSalesInput, bool) {
	query := c.Request.URL.Query()
	var input salestypes.ListSalesInput
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &input.Page); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return input, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &input.Size); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return input, false
	}
	return input, true
}

// bindPeriod reads the inclusive RFC 3339 start and end query parameters.
func bindPeriod(c *gin.Context) (salestypes.PeriodInput, bool) {
	start, ok := bindQueryTime(c, "start")
	if !ok {
		return salestypes.PeriodInput{}, false
	}
	end, ok := bindQueryTime(c, "end")
	if !ok {
		return salestypes.PeriodInput{}, false
	}
	return salestypes.PeriodInput{Start: start, End: end}, true
}

func bindQueryTime(c *gin.Context, name string) (time.Time, bool) {
	raw, ok := bindQueryString(c, name)
	if !ok {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid %s: expected RFC 3339 timestamp", name)))
		return time.Time{}, false
	}
	return parsed, true
}

func bindReturnStock(c *gin.Context) (bool, bool) {
	var returnStock bool
	if err := runtime.BindQueryParameter("form", true, false, "returnStock", c.Request.URL.Query(), &returnStock); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return false, false
	}
	return returnStock, true
}

func bindQueryString(c *gin.Context, name string) (string, bool) {
	var value string
	if err := runtime.BindQueryParameter("form", true, true, name, c.Request.URL.Query(), &value); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return "", false
	}
	return value, true
}

// noContent is written by successful deletes.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
