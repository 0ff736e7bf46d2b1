package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("thing missing")

func serve(t *testing.T, responder *ChainedResponder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) { responder.RespondError(c, err) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/7", nil))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	responder := NewChainedResponder("",
		SentinelMapper(errMissing, ErrNotFound),
		SentinelMapper(errMissing, ErrConflict),
	)
	rec, problem := serve(t, responder, fmt.Errorf("lookup: %w", errMissing))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, TypeNotFound, problem.Type)
	require.Equal(t, "lookup: thing missing", problem.Detail)
	require.Equal(t, "/things/7", problem.Instance)
}

func TestChainedResponder_FallsBackToInternal(t *testing.T) {
	rec, problem := serve(t, NewChainedResponder("https://errors.example"), errors.New("db down"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "https://errors.example"+TypeInternal, problem.Type)
	require.NotContains(t, problem.Detail, "db down")
}

func TestWithExtension_LeavesTemplateUntouched(t *testing.T) {
	first := NewNotFoundProblem("sale", 7)
	_ = first.WithExtension("extra", true)

	require.NotContains(t, first.Extensions, "extra")
	require.Nil(t, ErrNotFound.Extensions)
}

func TestNewInsufficientStockProblem(t *testing.T) {
	problem := NewInsufficientStockProblem("Mouse", 5, 2)
	require.Equal(t, http.StatusBadRequest, problem.Status)
	require.Equal(t, TypeInsufficientStock, problem.Type)
	require.Equal(t, "Mouse", problem.Extensions["productName"])
	require.Equal(t, "insufficient stock for product: Mouse", problem.Detail)
}
