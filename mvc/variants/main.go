package variants

import (
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
	errorsDtos "varbrowser/api/models/dtos/errors"
)

// GetVariantDetail merges both datasets' records for the `query` parameter.
// An empty query returns an empty list.
func GetVariantDetail(c echo.Context) error {
	gc := c.(*contexts.VarbrowserContext)

	res, err := gc.VariantService.Merge(gc.Request().Context(), c.QueryParam("query"))
	if err != nil {
		gc.Metrics.RequestsTotal.WithLabelValues(gc.Path(), "error").Inc()
		gc.ZapLogger.Error("variant detail failed", zap.String("query", res.Query), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorsDtos.CreateSimpleError("Something went wrong. Please contact the administrator!"))
	}

	gc.Metrics.RequestsTotal.WithLabelValues(gc.Path(), "ok").Inc()
	return c.JSON(http.StatusOK, res)
}
