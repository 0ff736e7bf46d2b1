package salesserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/Apurer/sales-inventory-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	customerapp "github.com/Apurer/sales-inventory-api/internal/domains/customers/application"
	customerports "github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	salesapp "github.com/Apurer/sales-inventory-api/internal/domains/sales/application"
	userapp "github.com/Apurer/sales-inventory-api/internal/domains/users/application"
	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/sales-inventory-api/internal/shared/errors"
)

// serviceResponder translates every bounded context's errors into problems.
// Typed errors come first so their extensions survive.
var serviceResponder = apierrors.NewChainedResponder("",
	insufficientStockMapper,
	saleNotFoundMapper,
	apierrors.SentinelMapper(salesapp.ErrInvalidInput, apierrors.ErrValidation),
	apierrors.SentinelMapper(salesapp.ErrIdempotencyConflict, apierrors.ErrConflict),

	apierrors.SentinelMapper(catalogapp.ErrInvalidInput, apierrors.ErrValidation),
	apierrors.SentinelMapper(catalogports.ErrNotFound, apierrors.ErrNotFound),
	apierrors.SentinelMapper(catalogports.ErrDuplicateName, apierrors.ErrConflict),
	apierrors.SentinelMapper(catalogports.ErrInUse, apierrors.ErrConflict),

	apierrors.SentinelMapper(customerapp.ErrInvalidInput, apierrors.ErrValidation),
	apierrors.SentinelMapper(customerports.ErrNotFound, apierrors.ErrNotFound),
	apierrors.SentinelMapper(customerports.ErrDuplicateTaxID, apierrors.ErrConflict),

	apierrors.SentinelMapper(userapp.ErrInvalidInput, apierrors.ErrValidation),
	apierrors.SentinelMapper(userapp.ErrAuthentication, apierrors.ErrUnauthorized),
	apierrors.SentinelMapper(userports.ErrUnauthenticated, apierrors.ErrUnauthorized),
	apierrors.SentinelMapper(userports.ErrDuplicateUsername, apierrors.ErrConflict),
	apierrors.SentinelMapper(userports.ErrNotFound, apierrors.ErrNotFound),
)

func insufficientStockMapper(err error) (apierrors.ProblemDetail, bool) {
	var stockErr *catalogdomain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewInsufficientStockProblem(stockErr.ProductName, stockErr.Requested, stockErr.Available), true
}

func saleNotFoundMapper(err error) (apierrors.ProblemDetail, bool) {
	var notFound *salesapp.NotFoundError
	if !errors.As(err, &notFound) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewNotFoundProblem(notFound.Entity, notFound.ID), true
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondServiceError writes the problem matching err; unmapped errors become 500.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problem := serviceResponder.Resolve(err)
	if problem.Status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("route", c.FullPath()),
			slog.String("error", err.Error()),
		)
	}
	serviceResponder.Respond(c, problem)
}
