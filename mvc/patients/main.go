package patients

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
	errorsDtos "varbrowser/api/models/dtos/errors"
	"varbrowser/api/repositories"
	patientsService "varbrowser/api/services/patients"
)

const (
	variantNotFound = "Variant not found"
	somethingWrong  = "Something went wrong. Please contact the administrator!"
)

// GetPatients serves one dataset's patients for a variant. Missing or
// unknown variants are reported in the body with a 200 status.
func GetPatients(c echo.Context) error {
	gc := c.(*contexts.VarbrowserContext)
	req := gc.PatientsRequest

	gc.ZapLogger.Debug("get patients",
		zap.String("dataset", string(gc.Adapter.Dataset())),
		zap.String("identity", req.Identity),
		zap.Int("page", req.Page),
		zap.String("filter", string(req.Filter)),
		zap.Bool("preload", req.Preload))

	res, err := gc.PatientService.GetPatients(gc.Request().Context(), gc.Adapter, req)
	switch {
	case err == nil:
		countRequest(gc, "ok")
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, patientsService.ErrMissingInput):
		countRequest(gc, "missing_input")
		return c.JSON(http.StatusOK, errorsDtos.CreateSimpleError(fmt.Sprintf("No %s provided", identityParam(gc))))
	case errors.Is(err, repositories.ErrNotFound):
		countRequest(gc, "not_found")
		return c.JSON(http.StatusOK, errorsDtos.CreateSimpleError(variantNotFound))
	default:
		countRequest(gc, "error")
		gc.ZapLogger.Error("get patients failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorsDtos.CreateSimpleError(somethingWrong))
	}
}

func countRequest(gc *contexts.VarbrowserContext, outcome string) {
	gc.Metrics.RequestsTotal.WithLabelValues(gc.Path(), outcome).Inc()
}

// identityParam names the query parameter the route read the identity from.
func identityParam(gc *contexts.VarbrowserContext) string {
	if gc.IdentityParam != "" {
		return gc.IdentityParam
	}
	return gc.Adapter.IdentityParam()
}
